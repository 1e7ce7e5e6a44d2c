// Package timefmt renders timestamps the way the client displays them: as a
// relative period ("3 小時前", "3 hours ago") and as a localized date.
package timefmt

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// ZhTW renders traditional chinese output. It is the default locale.
	ZhTW = "zh-tw"
	// En renders english output.
	En = "en"
)

// locale holds the strings of one language.
type locale struct {
	future, past string
	units        map[string]string
	am, pm       string
	display      func(t time.Time, l *locale) string
}

var locales = map[string]*locale{
	ZhTW: {
		future: "%s內",
		past:   "%s前",
		units: map[string]string{
			"s":  "幾秒",
			"m":  "1 分鐘",
			"mm": "%d 分鐘",
			"h":  "1 小時",
			"hh": "%d 小時",
			"d":  "1 天",
			"dd": "%d 天",
			"M":  "1 個月",
			"MM": "%d 個月",
			"y":  "1 年",
			"yy": "%d 年",
		},
		am: "上午",
		pm: "下午",
		display: func(t time.Time, l *locale) string {
			meridiem := l.am
			if t.Hour() >= 12 {
				meridiem = l.pm
			}
			clock := fmt.Sprintf("%s%d:%02d", meridiem, hour12(t), t.Minute())
			date := fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
			return clock + "．" + date
		},
	},
	En: {
		future: "in %s",
		past:   "%s ago",
		units: map[string]string{
			"s":  "a few seconds",
			"m":  "a minute",
			"mm": "%d minutes",
			"h":  "an hour",
			"hh": "%d hours",
			"d":  "a day",
			"dd": "%d days",
			"M":  "a month",
			"MM": "%d months",
			"y":  "a year",
			"yy": "%d years",
		},
		am: "AM",
		pm: "PM",
		display: func(t time.Time, l *locale) string {
			return t.Format("3:04 PM") + "．" + t.Format("January 2, 2006")
		},
	},
}

// threshold is one step of the relative time ladder. A step with a unit recomputes
// the distance in that unit; a step without one reuses the previous distance.
// The step applies while the rounded distance is at most max (0 means no limit).
type threshold struct {
	key  string
	max  int
	unit string
}

var thresholds = []threshold{
	{key: "s", max: 44, unit: "second"},
	{key: "m", max: 89},
	{key: "mm", max: 44, unit: "minute"},
	{key: "h", max: 89},
	{key: "hh", max: 21, unit: "hour"},
	{key: "d", max: 35},
	{key: "dd", max: 25, unit: "day"},
	{key: "M", max: 45},
	{key: "MM", max: 10, unit: "month"},
	{key: "y", max: 17},
	{key: "yy", unit: "year"},
}

// daysPerMonth is the average length of a month used for month and year distances.
const daysPerMonth = 365.25 / 12

// Formatter formats timestamps in a fixed locale and time zone.
type Formatter struct {
	locale   *locale
	location *time.Location
	// Now returns the current time. It's replaceable for tests.
	Now func() time.Time
}

// New returns a Formatter for the given locale ("zh-tw" or "en") and location.
// Unknown locales fall back to zh-tw, a nil location to UTC.
func New(localeName string, location *time.Location) *Formatter {
	l, ok := locales[strings.ToLower(localeName)]
	if !ok {
		l = locales[ZhTW]
	}
	if location == nil {
		location = time.UTC
	}
	return &Formatter{
		locale:   l,
		location: location,
		Now:      time.Now,
	}
}

// Period returns how long ago (or how far in the future) t is, relative to now.
func (f *Formatter) Period(t time.Time) string {
	diff := f.Now().Sub(t)
	format := f.locale.past
	if diff < 0 {
		format = f.locale.future
		diff = -diff
	}
	return fmt.Sprintf(format, f.relative(diff))
}

// relative walks the threshold ladder for a positive duration.
func (f *Formatter) relative(d time.Duration) string {
	var value float64
	for i, th := range thresholds {
		if th.unit != "" {
			value = inUnit(d, th.unit)
		}
		abs := int(math.Round(value))
		if th.max == 0 || abs <= th.max {
			key := th.key
			if abs <= 1 && i > 0 {
				key = thresholds[i-1].key
			}
			unit := f.locale.units[key]
			if strings.Contains(unit, "%d") {
				return fmt.Sprintf(unit, abs)
			}
			return unit
		}
	}
	return ""
}

// inUnit converts a duration into a fractional amount of the given unit.
func inUnit(d time.Duration, unit string) float64 {
	switch unit {
	case "second":
		return d.Seconds()
	case "minute":
		return d.Minutes()
	case "hour":
		return d.Hours()
	case "day":
		return d.Hours() / 24
	case "month":
		return d.Hours() / 24 / daysPerMonth
	default:
		return d.Hours() / 24 / daysPerMonth / 12
	}
}

// Display renders t as "<time of day>．<date>" in the formatter's time zone,
// e.g. "下午3:04．2021年10月5日" or "3:04 PM．October 5, 2021".
func (f *Formatter) Display(t time.Time) string {
	return f.locale.display(t.In(f.location), f.locale)
}

// hour12 returns the hour on a 12 hour clock, where midnight and noon are 12.
func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}
