package validation

import (
	"strings"

	"github.com/workflex/workflex/internal/schedule"
)

// BlockRequest mirrors the raw fields of a schedule block request.
type BlockRequest struct {
	Day       string
	StartTime string
	EndTime   string
	Location  string
}

const maxLocationLength = 255

// ValidateBlockRequest parses and validates a block request. The Block is
// only meaningful when no field errors are returned.
func ValidateBlockRequest(req BlockRequest) (schedule.Block, []FieldError) {
	var (
		b    schedule.Block
		errs []FieldError
	)

	if req.Day == "" {
		errs = append(errs, FieldError{Field: "day", Message: "day is required"})
	} else if day, err := schedule.ParseWeekday(req.Day); err != nil {
		errs = append(errs, FieldError{Field: "day", Message: "day must be one of Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday"})
	} else {
		b.Day = day
	}

	startOK, endOK := false, false
	if start, err := schedule.ParseClock(req.StartTime); err != nil {
		errs = append(errs, FieldError{Field: "startTime", Message: "startTime must be HH:MM between 00:00 and 23:59"})
	} else {
		b.Start, startOK = start, true
	}
	if end, err := schedule.ParseClock(req.EndTime); err != nil {
		errs = append(errs, FieldError{Field: "endTime", Message: "endTime must be HH:MM between 00:00 and 23:59"})
	} else {
		b.End, endOK = end, true
	}
	if startOK && endOK && b.Start >= b.End {
		errs = append(errs, FieldError{Field: "endTime", Message: "endTime must be after startTime"})
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		errs = append(errs, FieldError{Field: "location", Message: "location is required"})
	} else if len(location) > maxLocationLength {
		errs = append(errs, FieldError{Field: "location", Message: "location must be at most 255 characters"})
	}
	b.Location = location

	return b, errs
}
