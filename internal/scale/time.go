package scale

import (
	"time"

	"github.com/conneroisu/combochart/internal/chart"
)

// Time is a linear scale over instants.
type Time struct {
	lin   *Linear
	start time.Time
	end   time.Time
	cfg   Config
}

// NewTime maps [start, end] onto [r0, r1].
func NewTime(start, end time.Time, r0, r1 float64) *Time {
	return &Time{
		lin:   NewLinear(float64(start.UnixMilli()), float64(end.UnixMilli()), r0, r1),
		start: start,
		end:   end,
		cfg:   Config{Kind: KindTime, Domain: []any{start, end}, Range: [2]float64{r0, r1}},
	}
}

func (s *Time) Kind() Kind                 { return KindTime }
func (s *Time) Config() Config             { return s.cfg }
func (s *Time) Bandwidth() float64         { return 0 }
func (s *Time) Range() (float64, float64)  { return s.lin.Range() }
func (s *Time) Extent() (float64, float64) { return s.lin.Extent() }

// Map takes Unix milliseconds.
func (s *Time) Map(ms float64) float64 { return s.lin.Map(ms) }

// Invert returns Unix milliseconds.
func (s *Time) Invert(px float64) float64 { return s.lin.Invert(px) }

// Position accepts time values, parseable date strings or raw epoch
// milliseconds.
func (s *Time) Position(v any) (float64, bool) {
	if t, ok := chart.Time(v); ok {
		return s.lin.Map(float64(t.UnixMilli())), true
	}
	if f, ok := chart.NumberOK(v); ok {
		return s.lin.Map(f), true
	}
	return 0, false
}

type interval struct {
	unit  time.Duration
	month int
	year  int
	step  int
}

func (iv interval) approx() time.Duration {
	switch {
	case iv.year > 0:
		return time.Duration(iv.year) * 365 * 24 * time.Hour
	case iv.month > 0:
		return time.Duration(iv.month) * 30 * 24 * time.Hour
	}
	return time.Duration(iv.step) * iv.unit
}

var intervals = []interval{
	{unit: time.Second, step: 1},
	{unit: time.Second, step: 5},
	{unit: time.Second, step: 15},
	{unit: time.Second, step: 30},
	{unit: time.Minute, step: 1},
	{unit: time.Minute, step: 5},
	{unit: time.Minute, step: 15},
	{unit: time.Minute, step: 30},
	{unit: time.Hour, step: 1},
	{unit: time.Hour, step: 3},
	{unit: time.Hour, step: 6},
	{unit: time.Hour, step: 12},
	{unit: 24 * time.Hour, step: 1},
	{unit: 24 * time.Hour, step: 2},
	{unit: 7 * 24 * time.Hour, step: 1},
	{month: 1},
	{month: 3},
}

// Ticks picks the calendar interval closest to span/count and emits the
// aligned instants inside the domain.
func (s *Time) Ticks(count int) []Tick {
	if count <= 0 {
		return nil
	}
	start, end := s.start.UTC(), s.end.UTC()
	if end.Before(start) {
		start, end = end, start
	}
	if start.Equal(end) {
		return []Tick{s.tick(start, "Jan 02")}
	}
	target := end.Sub(start) / time.Duration(count)
	iv, ok := chooseInterval(target)
	if !ok {
		years := TickValues(float64(start.Year()), float64(end.Year()), count)
		step := 1
		if len(years) > 1 {
			step = max(1, int(years[1]-years[0]))
		}
		iv = interval{year: step}
	}
	layout := iv.layout()
	var out []Tick
	for t := iv.floor(start); !t.After(end); t = iv.next(t) {
		if t.Before(start) {
			continue
		}
		l := layout
		if iv.subDay() && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			l = "Jan 02"
		}
		out = append(out, s.tick(t, l))
		if len(out) > 1000 {
			break
		}
	}
	return out
}

func chooseInterval(target time.Duration) (interval, bool) {
	for i, iv := range intervals {
		if iv.approx() < target {
			continue
		}
		if i > 0 && float64(target)/float64(intervals[i-1].approx()) < float64(iv.approx())/float64(target) {
			return intervals[i-1], true
		}
		return iv, true
	}
	last := intervals[len(intervals)-1]
	if target < 2*last.approx() {
		return last, true
	}
	return interval{}, false
}

func (s *Time) tick(t time.Time, layout string) Tick {
	return Tick{Value: t, Position: s.lin.Map(float64(t.UnixMilli())), Label: t.Format(layout)}
}

// subDay reports whether ticks fall inside a day, so midnight ticks carry
// the date instead of 00:00.
func (iv interval) subDay() bool {
	return iv.year == 0 && iv.month == 0 && iv.unit < 24*time.Hour
}

func (iv interval) layout() string {
	switch {
	case iv.year > 0:
		return "2006"
	case iv.month > 0:
		return "Jan 2006"
	case iv.unit >= 24*time.Hour:
		return "Jan 02"
	case iv.unit >= time.Minute:
		return "15:04"
	}
	return "15:04:05"
}

func (iv interval) floor(t time.Time) time.Time {
	switch {
	case iv.year > 0:
		y := t.Year() - t.Year()%iv.year
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case iv.month > 0:
		m := int(t.Month()) - 1
		m -= m % iv.month
		return time.Date(t.Year(), time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
	case iv.unit == 7*24*time.Hour:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, -int(d.Weekday()))
	case iv.unit == 24*time.Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	step := time.Duration(iv.step) * iv.unit
	return t.Truncate(step)
}

func (iv interval) next(t time.Time) time.Time {
	switch {
	case iv.year > 0:
		return t.AddDate(iv.year, 0, 0)
	case iv.month > 0:
		return t.AddDate(0, iv.month, 0)
	case iv.unit >= 24*time.Hour:
		return t.AddDate(0, 0, iv.step*int(iv.unit/(24*time.Hour)))
	}
	return t.Add(time.Duration(iv.step) * iv.unit)
}
