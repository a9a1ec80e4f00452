package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/pmreport/internal/api"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates start and end to midnight in their own location.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: startOfDay(start), End: startOfDay(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("date range end %s is before start %s",
			r.End.Format(api.DateLayout), r.Start.Format(api.DateLayout))
	}
	return r, nil
}

// ParseDateRange builds a range from two YYYY-MM-DD strings.
func ParseDateRange(from, to string) (DateRange, error) {
	start, err := api.ParseDate(from)
	if err != nil {
		return DateRange{}, err
	}
	end, err := api.ParseDate(to)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(start.Time, end.Time)
}

// Contains reports whether day falls inside the range. Only the calendar
// date of day is compared, so time zones of stored dates do not matter.
func (r DateRange) Contains(day time.Time) bool {
	d := day.Format(api.DateLayout)
	return d >= r.Start.Format(api.DateLayout) && d <= r.End.Format(api.DateLayout)
}

// Days is the number of calendar days covered, both ends included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24+0.5) + 1
}

func (r DateRange) String() string {
	return r.Start.Format(api.DateLayout) + ".." + r.End.Format(api.DateLayout)
}

// Preset names a relative date range.
type Preset string

const (
	PresetLast7Days  Preset = "7d"
	PresetLast30Days Preset = "30d"
	PresetThisMonth  Preset = "month"
	PresetCustom     Preset = "custom"
)

// Presets lists the relative presets in the order the UI cycles them.
var Presets = []Preset{PresetThisMonth, PresetLast7Days, PresetLast30Days}

func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case PresetLast7Days, PresetLast30Days, PresetThisMonth, PresetCustom:
		return Preset(s), nil
	case "":
		return PresetThisMonth, nil
	}
	return "", fmt.Errorf("unknown date preset %q", s)
}

func (p Preset) Label() string {
	switch p {
	case PresetLast7Days:
		return "Last 7 days"
	case PresetLast30Days:
		return "Last 30 days"
	case PresetThisMonth:
		return "This month"
	case PresetCustom:
		return "Custom"
	}
	return string(p)
}

// Range resolves a relative preset against now. Custom has no relative
// meaning and resolves to this month.
func (p Preset) Range(now time.Time) DateRange {
	today := startOfDay(now)
	switch p {
	case PresetLast7Days:
		return DateRange{Start: today.AddDate(0, 0, -7), End: today}
	case PresetLast30Days:
		return DateRange{Start: today.AddDate(0, 0, -30), End: today}
	default:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return DateRange{Start: first, End: first.AddDate(0, 1, -1)}
	}
}

// Resolve picks the range requested by a caller: explicit from and to
// dates when given (both are required), otherwise the named preset.
func Resolve(preset, from, to string, now time.Time) (DateRange, error) {
	if from != "" || to != "" {
		if from == "" || to == "" {
			return DateRange{}, errors.New("start and end must be given together")
		}
		return ParseDateRange(from, to)
	}
	p, err := ParsePreset(preset)
	if err != nil {
		return DateRange{}, err
	}
	return p.Range(now), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
