package handler

import (
	"reflect"
	"strings"

	"github.com/go-beanio/beanio/value"
)

// SequenceHandler is synthesized by Registry.Resolve for slice/array types
// whose element type has its own handler (spec §4.1): it splits on
// Delimiter to parse and joins with Delimiter to format, honoring a
// single-character Escape that escapes only itself and the delimiter.
type SequenceHandler struct {
	Elem      Handler
	SliceType reflect.Type
	Delimiter rune
	Escape    rune
}

func (h *SequenceHandler) TargetType() reflect.Type { return h.SliceType }

func (h *SequenceHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	parts := h.split(text)
	items := make([]value.Value, 0, len(parts))
	for _, p := range parts {
		v, err := h.Elem.Parse(p)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.NewSequence(items...), nil
}

func (h *SequenceHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	items := v.Sequence()
	parts := make([]string, 0, len(items))
	for _, item := range items {
		text, ok, err := h.Elem.Format(item)
		if err != nil {
			return "", false, err
		}
		if !ok {
			text = ""
		}
		parts = append(parts, h.escape(text))
	}
	return strings.Join(parts, string(h.Delimiter)), true, nil
}

func (h *SequenceHandler) split(text string) []string {
	var parts []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == h.Escape && i+1 < len(runes) && (runes[i+1] == h.Delimiter || runes[i+1] == h.Escape) {
			cur.WriteRune(runes[i+1])
			i++
			continue
		}
		if c == h.Delimiter {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(c)
	}
	parts = append(parts, cur.String())
	return parts
}

func (h *SequenceHandler) escape(s string) string {
	var out strings.Builder
	for _, c := range s {
		if c == h.Escape || c == h.Delimiter {
			out.WriteRune(h.Escape)
		}
		out.WriteRune(c)
	}
	return out.String()
}
