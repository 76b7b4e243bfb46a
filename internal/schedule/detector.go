package schedule

// SelfID tags the requesting user's own blocks in co-location groups.
const SelfID = "you"

// ForDay returns the blocks that fall on day, in their original order.
func ForDay(blocks []Block, day Weekday) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Day == day {
			out = append(out, b)
		}
	}
	return out
}

// Overlaps reports whether two blocks intersect in time. Ranges are half-open,
// so a block ending exactly when another starts does not overlap it.
// Days are not compared.
func Overlaps(a, b Block) bool {
	return a.Start < b.End && a.End > b.Start
}

// FindOverlappingSlots returns, for each reference block intersecting
// candidate, the intersection interval. One entry per intersecting reference
// block, in reference order; entries are neither merged nor deduplicated.
func FindOverlappingSlots(candidate Block, reference []Block) []Slot {
	slots := make([]Slot, 0)
	for _, ref := range reference {
		if !Overlaps(candidate, ref) {
			continue
		}
		slots = append(slots, Slot{
			Start: max(candidate.Start, ref.Start),
			End:   min(candidate.End, ref.End),
		})
	}
	return slots
}

type colocationKey struct {
	location string
	start    Clock
	end      Clock
}

// FindColocated groups the day's blocks of self and members by the exact
// (location, start, end) triple. Self blocks are tagged SelfID. Only groups
// with at least two distinct identifiers are returned, in order of first
// appearance. Overlapping but non-identical ranges are not grouped.
func FindColocated(day Weekday, self []Block, members []MemberSchedule) []Colocation {
	var order []colocationKey
	groups := make(map[colocationKey]*Colocation)

	add := func(id string, b Block) {
		if b.Day != day {
			return
		}
		key := colocationKey{location: b.Location, start: b.Start, end: b.End}
		g, ok := groups[key]
		if !ok {
			g = &Colocation{Location: b.Location, Start: b.Start, End: b.End}
			groups[key] = g
			order = append(order, key)
		}
		for _, existing := range g.Members {
			if existing == id {
				return
			}
		}
		g.Members = append(g.Members, id)
	}

	for _, b := range self {
		add(SelfID, b)
	}
	for _, m := range members {
		for _, b := range m.Blocks {
			add(m.MemberID, b)
		}
	}

	out := make([]Colocation, 0)
	for _, key := range order {
		if g := groups[key]; len(g.Members) > 1 {
			out = append(out, *g)
		}
	}
	return out
}
