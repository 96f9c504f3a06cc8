package stream

import (
	"strings"

	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/parser"
)

// fieldText extracts a field's raw text from rec according to format: a
// token lookup by Position for delimited/CSV formats, or a slice of the raw
// line by Offset/Length for fixed-length formats (spec §4.1, §6).
func fieldText(desc *parser.FieldDescriptor, rec *RawRecord, format config.Format) string {
	if format == config.FixedLength {
		line := rec.Line
		start := desc.Offset
		end := start + desc.Length
		if start < 0 || start > len(line) {
			return ""
		}
		if end > len(line) {
			end = len(line)
		}
		return strings.TrimRight(line[start:end], string(rune(desc.PadChar)))
	}
	if desc.Position < 0 || desc.Position >= len(rec.Fields) {
		return ""
	}
	return rec.Fields[desc.Position]
}

// fieldEnv builds a name->text environment for rc's direct Field children,
// used for expression-based record identification. Field validation
// expressions get their own value/text environment in parseFieldText.
func fieldEnv(rc *parser.Component, rec *RawRecord, format config.Format) map[string]any {
	env := make(map[string]any)
	for _, fp := range rc.Fields() {
		env[fp.Name] = fieldText(fp.Field, rec, format)
	}
	return env
}

// matches reports whether rec satisfies rc's Identifier, trying literal,
// then regex, then expression, in that order of precedence (spec §4.6,
// SPEC_FULL.md §2.1). A record with no Identifier at all matches anything;
// the Preprocessor's checkUniqueIdentifiers only compares declared
// identifier fields, so it does not reject such a record alongside others.
func matches(rc *parser.Component, rec *RawRecord, format config.Format) (bool, error) {
	id := rc.Identifier
	if id == nil {
		return true, nil
	}

	if id.FieldName != "" {
		var desc *parser.FieldDescriptor
		for _, fp := range rc.Fields() {
			if fp.Name == id.FieldName {
				desc = fp.Field
				break
			}
		}
		if desc != nil {
			text := fieldText(desc, rec, format)
			if id.Literal != nil {
				return text == *id.Literal, nil
			}
			if id.Regex != nil {
				return id.Regex.MatchString(text), nil
			}
		}
	}

	if id.Expr != nil {
		result, err := id.Expr.Eval(fieldEnv(rc, rec, format))
		if err != nil {
			return false, err
		}
		truthy, _ := result.(bool)
		return truthy, nil
	}

	return id.FieldName == "", nil
}
