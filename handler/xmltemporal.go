package handler

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-beanio/beanio/value"
)

// XMLKind selects which of the three W3C XML Schema lexical forms a
// XMLTemporalHandler accepts.
type XMLKind int

const (
	XMLDate XMLKind = iota
	XMLTime
	XMLDateTime
)

var timeType = reflect.TypeOf(time.Time{})

// nonLenientLayouts are the full date, time and dateTime forms (yyyy-MM-dd,
// HH:mm:ss, or both) with an optional zone, tried first regardless of
// Lenient (spec §4.1).
var nonLenientLayouts = map[XMLKind][]string{
	XMLDate:     {"2006-01-02Z07:00", "2006-01-02"},
	XMLTime:     {"15:04:05.999999999Z07:00", "15:04:05Z07:00", "15:04:05"},
	XMLDateTime: {"2006-01-02T15:04:05.999999999Z07:00", "2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05"},
}

// lenientLayouts are the time-only/zone-only forms tried only when Lenient
// is set and every non-lenient layout failed; the date portion of a
// successful lenient parse is always replaced with the Unix epoch.
var lenientLayouts = []string{
	"15:04:05.999999999Z07:00",
	"15:04:05Z07:00",
	"15:04",
	"15:04:05",
	"Z07:00",
}

// XMLTemporalHandler accepts the W3C XML Schema lexical forms for date,
// time, and dateTime (spec §4.1).
type XMLTemporalHandler struct {
	Kind            XMLKind
	Lenient         bool
	TimeZoneAllowed bool
}

func (h *XMLTemporalHandler) TargetType() reflect.Type { return timeType }

func (h *XMLTemporalHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}

	t, lenientMatch, err := h.parseLexical(text)
	if err != nil {
		return value.Value{}, err
	}

	if lenientMatch {
		t = withEpochDate(t)
	}
	if h.Kind == XMLTime {
		t = withEpochDate(t)
	}

	if !h.TimeZoneAllowed {
		if _, offset := t.Zone(); offset != 0 {
			return value.Value{}, &parseErr{text, fmt.Errorf("non-zero time zone offset not allowed")}
		}
	}

	return value.NewTime(t), nil
}

func (h *XMLTemporalHandler) parseLexical(text string) (t time.Time, lenient bool, err error) {
	for _, layout := range nonLenientLayouts[h.Kind] {
		if parsed, perr := time.Parse(layout, text); perr == nil {
			return parsed, false, nil
		}
	}
	if h.Lenient {
		for _, layout := range lenientLayouts {
			if parsed, perr := time.Parse(layout, text); perr == nil {
				return parsed, true, nil
			}
		}
	}
	return time.Time{}, false, &parseErr{text, fmt.Errorf("not a valid xml %s", kindName(h.Kind))}
}

func withEpochDate(t time.Time) time.Time {
	return time.Date(1970, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func kindName(k XMLKind) string {
	switch k {
	case XMLDate:
		return "date"
	case XMLTime:
		return "time"
	default:
		return "dateTime"
	}
}

func (h *XMLTemporalHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	t := v.Time()
	layouts := nonLenientLayouts[h.Kind]
	layout := layouts[len(layouts)-2] // the with-zone layout, one before the bare one
	if len(layouts) == 2 {
		layout = layouts[0]
	}
	return t.Format(layout), true, nil
}

func (h *XMLTemporalHandler) Configure(props map[string]string) error {
	if v, ok := props["lenient"]; ok {
		h.Lenient = v == "true"
	}
	if v, ok := props["timeZoneAllowed"]; ok {
		h.TimeZoneAllowed = v == "true"
	}
	return nil
}
