// Preprocessor implements the compiler's first pass (spec §4.5, §3): it
// validates, defaults, assigns positions, and propagates inherited
// settings across the declarative configuration tree before ParserFactory
// ever sees it.
package config

import (
	"fmt"
	"sort"

	"github.com/go-beanio/beanio/errs"
)

// Preprocess validates cfg in place and returns a *ConfigurationError (via
// errs.ConfigurationError) describing the first problem found, or nil.
func Preprocess(cfg *StreamConfig) error {
	if cfg.Mode == "" {
		cfg.Mode = ReadWrite
	}
	if cfg.Order == "" {
		cfg.Order = Unordered
	}

	colors := make(map[any]int) // 0=white 1=gray 2=black
	if err := walkGroupCycle(groupView{records: cfg.Records, groups: cfg.Groups}, colors); err != nil {
		return err
	}

	for _, r := range cfg.Records {
		if err := preprocessRecord(r, cfg.Mode); err != nil {
			return err
		}
	}
	for _, g := range cfg.Groups {
		if err := preprocessGroup(g, cfg.Mode); err != nil {
			return err
		}
	}

	if err := checkUniqueIdentifiers(cfg.Records); err != nil {
		return err
	}

	return nil
}

type groupView struct {
	records []*RecordConfig
	groups  []*GroupConfig
}

// walkGroupCycle DFS-colors the group tree to rule out cycles, per
// SPEC_FULL.md §4 ("Cyclic dependencies"): white/gray/black marking, a
// gray-node revisit is a ConfigurationError. Record/group configs in this
// package form a tree by construction (Go has no back-reference fields
// here), so this mainly protects against a caller manually aliasing a
// *GroupConfig into two places in a way that would form a cycle once
// mutated.
func walkGroupCycle(v groupView, colors map[any]int) error {
	for _, g := range v.groups {
		if colors[g] == 1 {
			return &errs.ConfigurationError{Path: g.Name, Msg: "cyclic group reference"}
		}
		if colors[g] == 2 {
			continue
		}
		colors[g] = 1
		if err := walkGroupCycle(groupView{records: g.Records, groups: g.Groups}, colors); err != nil {
			return err
		}
		colors[g] = 2
	}
	return nil
}

func preprocessGroup(g *GroupConfig, parentMode Mode) error {
	if g.Order == "" {
		g.Order = Unordered
	}
	if g.MaxOccurs == 0 {
		g.MaxOccurs = 1
	}
	for _, r := range g.Records {
		if err := preprocessRecord(r, parentMode); err != nil {
			return err
		}
	}
	for _, sub := range g.Groups {
		if err := preprocessGroup(sub, parentMode); err != nil {
			return err
		}
	}
	return checkUniqueIdentifiers(g.Records)
}

// preprocessRecord defaults a record's Mode and MaxOccurs (to 1, "appears
// at most once") but deliberately leaves a zero MinOccurs at 0: a record
// definition is optional-by-default, unlike a FieldConfig (defaulted to
// MinOccurs=1, "required") below. In a Sequential group this decides where
// an out-of-order record is caught (groupCursor only advances past a child
// once its MinOccurs is satisfied): with MinOccurs >= 1 on R1 an early R2 is
// itself rejected, while with the default of 0 the early R2 is accepted and
// the later R1 is rejected as unidentifiable. A record left at MinOccurs 0
// that never appears raises no occurrence error.
func preprocessRecord(r *RecordConfig, parentMode Mode) error {
	if r.Mode == "" {
		r.Mode = parentMode
	}
	if r.MaxOccurs == 0 {
		r.MaxOccurs = 1
	}

	nextPos := 0
	seen := make(map[int]string)
	for _, f := range r.Fields {
		if f.Mode == "" {
			f.Mode = r.Mode
		}
		if f.PadChar == 0 {
			f.PadChar = ' '
		}
		if f.MaxOccurs == 0 {
			f.MaxOccurs = 1
		}
		if f.MinOccurs == 0 {
			f.MinOccurs = 1
		}
		if f.Position == 0 && nextPos != 0 {
			f.Position = nextPos
		}
		if existing, ok := seen[f.Position]; ok {
			return &errs.ConfigurationError{Path: r.Name, Msg: fmt.Sprintf("duplicate field position %d (%s and %s)", f.Position, existing, f.Name)}
		}
		seen[f.Position] = f.Name
		nextPos = f.Position + 1

		if err := validateMode(r.Name, f.Name, f.Mode, parentMode); err != nil {
			return err
		}
	}

	if err := checkCtorArgContiguity(r.Name, r.Fields, r.Segments); err != nil {
		return err
	}

	for _, s := range r.Segments {
		if err := preprocessSegment(s, r.Name, r.Mode); err != nil {
			return err
		}
	}

	return nil
}

func preprocessSegment(s *SegmentConfig, path string, parentMode Mode) error {
	if s.Mode == "" {
		s.Mode = parentMode
	}
	for _, f := range s.Fields {
		if f.Mode == "" {
			f.Mode = s.Mode
		}
		if f.PadChar == 0 {
			f.PadChar = ' '
		}
		if f.MaxOccurs == 0 {
			f.MaxOccurs = 1
		}
		if f.MinOccurs == 0 {
			f.MinOccurs = 1
		}
	}
	if err := checkCtorArgContiguity(path+"."+s.Name, s.Fields, s.Segments); err != nil {
		return err
	}
	for _, sub := range s.Segments {
		if err := preprocessSegment(sub, path+"."+s.Name, s.Mode); err != nil {
			return err
		}
	}
	return nil
}

// validateMode enforces "mode=read forbids write-only constructs; dual for
// write" (spec §3): a field/segment narrower than its record's mode is
// fine, but one claiming a direction the record itself lacks is an error.
func validateMode(recordName, memberName string, mode, recordMode Mode) error {
	if recordMode == ReadWrite || mode == ReadWrite {
		return nil
	}
	if mode != recordMode {
		return &errs.ConfigurationError{
			Path: recordName + "." + memberName,
			Msg:  fmt.Sprintf("member mode %q incompatible with record mode %q", mode, recordMode),
		}
	}
	return nil
}

// checkCtorArgContiguity enforces that constructor-argument indices among a
// record/segment's direct field and segment children are contiguous 0..N-1
// (spec §3 invariant).
func checkCtorArgContiguity(path string, fields []*FieldConfig, segments []*SegmentConfig) error {
	var indices []int
	for _, f := range fields {
		if f.CtorArgIndex >= 0 {
			indices = append(indices, f.CtorArgIndex)
		}
	}
	for _, s := range segments {
		if s.CtorArgIndex >= 0 {
			indices = append(indices, s.CtorArgIndex)
		}
	}
	if len(indices) == 0 {
		return nil
	}
	sort.Ints(indices)
	for i, idx := range indices {
		if idx != i {
			return &errs.ConfigurationError{Path: path, Msg: fmt.Sprintf("constructor-argument indices must be contiguous 0..%d, got %v", len(indices)-1, indices)}
		}
	}
	return nil
}

// checkUniqueIdentifiers enforces that record identifiers, if present,
// uniquely identify their record within the enclosing group (spec §3).
func checkUniqueIdentifiers(records []*RecordConfig) error {
	type idKey struct {
		field string
		value string
	}
	seen := make(map[idKey]string)
	for _, r := range records {
		for _, f := range r.Fields {
			if !f.Identifier {
				continue
			}
			k := idKey{f.Name, f.Default + "|" + f.IdentifierRegex}
			if other, ok := seen[k]; ok && other != r.Name {
				return &errs.ConfigurationError{Path: r.Name, Msg: fmt.Sprintf("identifier on field %q collides with record %q", f.Name, other)}
			}
			seen[k] = r.Name
		}
	}
	return nil
}
