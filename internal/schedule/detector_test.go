package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflex/workflex/internal/schedule"
)

func block(day schedule.Weekday, start, end, location string) schedule.Block {
	return schedule.Block{
		Day:      day,
		Start:    schedule.MustClock(start),
		End:      schedule.MustClock(end),
		Location: location,
	}
}

func slot(start, end string) schedule.Slot {
	return schedule.Slot{Start: schedule.MustClock(start), End: schedule.MustClock(end)}
}

func TestFindOverlappingSlots_PartialOverlap(t *testing.T) {
	mine := []schedule.Block{block(schedule.Monday, "09:00", "12:00", "Office")}
	candidate := block(schedule.Monday, "11:00", "13:00", "Home")

	got := schedule.FindOverlappingSlots(candidate, mine)

	require.Len(t, got, 1)
	assert.Equal(t, slot("11:00", "12:00"), got[0])
}

func TestFindOverlappingSlots_TouchingIsNotOverlap(t *testing.T) {
	mine := []schedule.Block{block(schedule.Monday, "09:00", "12:00", "Office")}
	candidate := block(schedule.Monday, "12:00", "13:00", "Office")

	got := schedule.FindOverlappingSlots(candidate, mine)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindOverlappingSlots_OneEntryPerReferenceBlock(t *testing.T) {
	mine := []schedule.Block{
		block(schedule.Monday, "09:00", "12:00", "Office"),
		block(schedule.Monday, "13:00", "17:00", "Office"),
		block(schedule.Monday, "10:00", "11:00", "Client Site"),
	}
	candidate := block(schedule.Monday, "08:00", "16:00", "Office")

	got := schedule.FindOverlappingSlots(candidate, mine)

	assert.Equal(t, []schedule.Slot{
		slot("09:00", "12:00"),
		slot("13:00", "16:00"),
		slot("10:00", "11:00"),
	}, got)
}

func TestFindOverlappingSlots_Containment(t *testing.T) {
	mine := []schedule.Block{block(schedule.Tuesday, "08:00", "18:00", "Home")}
	candidate := block(schedule.Tuesday, "10:00", "11:30", "Office")

	assert.Equal(t, []schedule.Slot{slot("10:00", "11:30")}, schedule.FindOverlappingSlots(candidate, mine))
}

func TestFindOverlappingSlots_EmptyReference(t *testing.T) {
	got := schedule.FindOverlappingSlots(block(schedule.Monday, "09:00", "10:00", "Office"), nil)
	assert.Empty(t, got)
}

func TestFindColocated_ExactTripleOnly(t *testing.T) {
	self := []schedule.Block{block(schedule.Monday, "09:00", "17:00", "Office")}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{block(schedule.Monday, "09:00", "17:00", "Office")}},
		{MemberID: "B", Blocks: []schedule.Block{block(schedule.Monday, "09:00", "17:00", "Home")}},
	}

	got := schedule.FindColocated(schedule.Monday, self, members)

	require.Len(t, got, 1)
	assert.Equal(t, "Office", got[0].Location)
	assert.Equal(t, schedule.MustClock("09:00"), got[0].Start)
	assert.Equal(t, schedule.MustClock("17:00"), got[0].End)
	assert.Equal(t, []string{schedule.SelfID, "A"}, got[0].Members)
}

func TestFindColocated_OverlapWithoutExactMatchIsNotColocated(t *testing.T) {
	self := []schedule.Block{block(schedule.Monday, "09:00", "12:00", "Office")}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{block(schedule.Monday, "09:30", "11:30", "Office")}},
	}

	assert.Empty(t, schedule.FindColocated(schedule.Monday, self, members))
}

func TestFindColocated_TeammatesWithoutSelf(t *testing.T) {
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{block(schedule.Friday, "09:00", "13:00", "Office")}},
		{MemberID: "B", Blocks: []schedule.Block{block(schedule.Friday, "09:00", "13:00", "Office")}},
		{MemberID: "C", Blocks: []schedule.Block{block(schedule.Friday, "09:00", "13:00", "Office")}},
	}

	got := schedule.FindColocated(schedule.Friday, nil, members)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B", "C"}, got[0].Members)
}

func TestFindColocated_IgnoresOtherDaysAndEmptyMembers(t *testing.T) {
	self := []schedule.Block{
		block(schedule.Monday, "09:00", "17:00", "Office"),
		block(schedule.Tuesday, "09:00", "17:00", "Office"),
	}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{block(schedule.Tuesday, "09:00", "17:00", "Office")}},
		{MemberID: "B"},
	}

	assert.Empty(t, schedule.FindColocated(schedule.Monday, self, members))
	assert.Len(t, schedule.FindColocated(schedule.Tuesday, self, members), 1)
}

func TestFindColocated_RequiresDistinctMembers(t *testing.T) {
	self := []schedule.Block{
		block(schedule.Monday, "09:00", "12:00", "Office"),
		block(schedule.Monday, "09:00", "12:00", "Office"),
	}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{
			block(schedule.Monday, "14:00", "15:00", "Home"),
			block(schedule.Monday, "14:00", "15:00", "Home"),
		}},
	}

	assert.Empty(t, schedule.FindColocated(schedule.Monday, self, members))
}

func TestFindColocated_FirstAppearanceOrder(t *testing.T) {
	self := []schedule.Block{block(schedule.Monday, "13:00", "17:00", "Office")}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{
			block(schedule.Monday, "08:00", "12:00", "Home"),
			block(schedule.Monday, "13:00", "17:00", "Office"),
		}},
		{MemberID: "B", Blocks: []schedule.Block{block(schedule.Monday, "08:00", "12:00", "Home")}},
	}

	got := schedule.FindColocated(schedule.Monday, self, members)

	require.Len(t, got, 2)
	assert.Equal(t, "Office", got[0].Location)
	assert.Equal(t, []string{schedule.SelfID, "A"}, got[0].Members)
	assert.Equal(t, "Home", got[1].Location)
	assert.Equal(t, []string{"A", "B"}, got[1].Members)
}

func TestDetector_IdempotentAndPure(t *testing.T) {
	self := []schedule.Block{
		block(schedule.Monday, "09:00", "12:00", "Office"),
		block(schedule.Monday, "13:00", "17:00", "Office"),
	}
	members := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: []schedule.Block{block(schedule.Monday, "09:00", "12:00", "Office")}},
		{MemberID: "B", Blocks: []schedule.Block{block(schedule.Monday, "11:00", "14:00", "Home")}},
	}

	selfCopy := append([]schedule.Block(nil), self...)
	membersCopy := []schedule.MemberSchedule{
		{MemberID: "A", Blocks: append([]schedule.Block(nil), members[0].Blocks...)},
		{MemberID: "B", Blocks: append([]schedule.Block(nil), members[1].Blocks...)},
	}

	first := schedule.FindColocated(schedule.Monday, self, members)
	second := schedule.FindColocated(schedule.Monday, self, members)
	assert.Equal(t, first, second)

	overlapsFirst := schedule.FindOverlappingSlots(members[1].Blocks[0], self)
	overlapsSecond := schedule.FindOverlappingSlots(members[1].Blocks[0], self)
	assert.Equal(t, overlapsFirst, overlapsSecond)
	assert.Equal(t, []schedule.Slot{slot("11:00", "12:00"), slot("13:00", "14:00")}, overlapsFirst)

	assert.Equal(t, selfCopy, self)
	assert.Equal(t, membersCopy, members)
}

func TestForDay(t *testing.T) {
	blocks := []schedule.Block{
		block(schedule.Monday, "09:00", "10:00", "Office"),
		block(schedule.Tuesday, "09:00", "10:00", "Home"),
		block(schedule.Monday, "11:00", "12:00", "Home"),
	}

	got := schedule.ForDay(blocks, schedule.Monday)

	assert.Equal(t, []schedule.Block{blocks[0], blocks[2]}, got)
	assert.Empty(t, schedule.ForDay(blocks, schedule.Sunday))
}

func TestBlock_Validate(t *testing.T) {
	assert.NoError(t, block(schedule.Monday, "09:00", "10:00", "Office").Validate())

	tests := []struct {
		name string
		b    schedule.Block
	}{
		{name: "end before start", b: block(schedule.Monday, "10:00", "09:00", "Office")},
		{name: "empty range", b: block(schedule.Monday, "10:00", "10:00", "Office")},
		{name: "blank location", b: block(schedule.Monday, "09:00", "10:00", "  ")},
		{name: "unknown day", b: block("Funday", "09:00", "10:00", "Office")},
		{name: "out of range clock", b: schedule.Block{Day: schedule.Monday, Start: 0, End: 2000, Location: "Office"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.b.Validate(), schedule.ErrInvalidBlock)
		})
	}
}
