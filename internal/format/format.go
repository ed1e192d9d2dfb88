// Package format converts raw document values into display strings.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/starford/aquatrack/internal/models"
)

// Placeholder is shown for absent values.
const Placeholder = "—"

const (
	dateTimeSeparator = " · "
	volumeUnit        = " L"
)

// Formatter holds the locale settings used for display strings.
type Formatter struct {
	Locale     language.Tag
	Location   *time.Location
	DateLayout string
	TimeLayout string

	printer *message.Printer
}

// New returns a Formatter. Empty layouts and a nil location use the defaults.
func New(locale language.Tag, loc *time.Location, dateLayout, timeLayout string) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	if dateLayout == "" {
		dateLayout = "Jan 2, 2006"
	}
	if timeLayout == "" {
		timeLayout = "03:04 PM"
	}
	return &Formatter{
		Locale:     locale,
		Location:   loc,
		DateLayout: dateLayout,
		TimeLayout: timeLayout,
		printer:    message.NewPrinter(locale),
	}
}

// Default returns an en-US formatter in the local time zone.
func Default() *Formatter {
	return New(language.AmericanEnglish, time.Local, "", "")
}

// Date renders a date value as "Jan 2, 2006". Falsy values give the
// placeholder and unparseable values are returned unchanged.
func (f *Formatter) Date(v models.Field) string {
	if !v.Truthy {
		return Placeholder
	}
	t, ok := f.Parse(v)
	if !ok {
		return v.Text
	}
	return t.In(f.Location).Format(f.DateLayout)
}

// DateTime renders a date value followed by the time of day.
func (f *Formatter) DateTime(v models.Field) string {
	if !v.Truthy {
		return Placeholder
	}
	t, ok := f.Parse(v)
	if !ok {
		return v.Text
	}
	t = t.In(f.Location)
	return t.Format(f.DateLayout) + dateTimeSeparator + t.Format(f.TimeLayout)
}

// Volume renders litres with locale digit grouping.
func (f *Formatter) Volume(v models.Field) string {
	if !v.Set {
		return Placeholder
	}
	n, ok := numeric(v)
	if !ok {
		if strings.TrimSpace(v.Text) == "" {
			return Placeholder
		}
		return v.Text
	}
	return f.printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3))) + volumeUnit
}

func numeric(v models.Field) (float64, bool) {
	if v.IsNum {
		return v.Num, true
	}
	s := strings.TrimSpace(v.Text)
	if s == "" || s == "true" || s == "false" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// zoned layouts carry their own offset; local layouts are read in the
// formatter's location, and date-only forms are UTC midnight.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2, 2006 15:04",
		"01/02/2006",
		"2006/01/02",
	}
	utcLayouts = []string{
		"2006-01-02",
		"2006-01",
		"2006",
	}
)

// Parse interprets v as an instant. Numbers are epoch milliseconds.
func (f *Formatter) Parse(v models.Field) (time.Time, bool) {
	if !v.Set {
		return time.Time{}, false
	}
	if v.IsNum {
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.Num)), true
	}
	return f.ParseString(v.Text)
}

// ParseString interprets a date string.
func (f *Formatter) ParseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range utcLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, f.Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes s safe to embed in markup.
func Escape(s string) string {
	return htmlReplacer.Replace(s)
}
