package stream

import (
	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/errs"
	"github.com/go-beanio/beanio/parser"
)

// groupCursor is the record-group pushdown recognizer (spec §4.6): it walks
// one RecordGroup's (or the Stream root's) declared children in the order
// its compiled Order discipline demands, tracking per-child occurrence
// counts so MinOccurs/MaxOccurs can be enforced both mid-stream (Sequential
// ordering violations) and at EOF (occurrence violations).
//
// Sequential: children must be satisfied in declared order; a child may
// repeat up to its own MaxOccurs before the next declared child becomes
// eligible, and once the cursor advances past a child it may not match
// again.
//
// Unordered: any declared child may appear in any order; only each child's
// own MinOccurs/MaxOccurs bounds are enforced.
//
// Nested RecordGroups are recursed into the same way; a Sequential parent
// only advances past a nested group once every child inside that group has
// reached its own MinOccurs (groupCursor.satisfiedMin). Group-level
// MinOccurs/MaxOccurs on the GroupConfig itself (the group as a whole
// repeating as a unit) is not modeled here — see DESIGN.md's "Known
// limitation" note.
type groupCursor struct {
	node     *parser.Component
	pos      int // Sequential only: index of the child currently eligible
	counts   map[*parser.Component]int
	children map[*parser.Component]*groupCursor // RecordGroup children, keyed by node
}

func newGroupCursor(node *parser.Component) *groupCursor {
	gc := &groupCursor{
		node:     node,
		counts:   make(map[*parser.Component]int),
		children: make(map[*parser.Component]*groupCursor),
	}
	for _, ch := range node.Children {
		if ch.Kind == parser.RecordGroup {
			gc.children[ch] = newGroupCursor(ch)
		}
	}
	return gc
}

// dispatch tries to match rec against some Record reachable from gc,
// honoring gc.node.Order. It returns the matched Record parser node, or
// (nil, nil) if nothing currently eligible in this subtree accepts rec.
func (gc *groupCursor) dispatch(rec *RawRecord, format config.Format) (*parser.Component, error) {
	if gc.node.Order == config.Sequential {
		return gc.dispatchSequential(rec, format)
	}
	return gc.dispatchUnordered(rec, format)
}

func (gc *groupCursor) dispatchSequential(rec *RawRecord, format config.Format) (*parser.Component, error) {
	for gc.pos < len(gc.node.Children) {
		child := gc.node.Children[gc.pos]
		switch child.Kind {
		case parser.Record:
			ok, err := matches(child, rec, format)
			if err != nil {
				return nil, err
			}
			if ok {
				gc.counts[child]++
				if child.MaxOccurs != 0 && gc.counts[child] >= child.MaxOccurs {
					gc.pos++
				}
				return child, nil
			}
			if gc.counts[child] >= child.MinOccurs {
				gc.pos++
				continue
			}
			return nil, nil
		case parser.RecordGroup:
			sub := gc.children[child]
			rp, err := sub.dispatch(rec, format)
			if err != nil {
				return nil, err
			}
			if rp != nil {
				return rp, nil
			}
			if sub.satisfiedMin() {
				gc.pos++
				continue
			}
			return nil, nil
		default:
			gc.pos++
		}
	}
	return nil, nil
}

func (gc *groupCursor) dispatchUnordered(rec *RawRecord, format config.Format) (*parser.Component, error) {
	for _, child := range gc.node.Children {
		switch child.Kind {
		case parser.Record:
			if child.MaxOccurs != 0 && gc.counts[child] >= child.MaxOccurs {
				continue
			}
			ok, err := matches(child, rec, format)
			if err != nil {
				return nil, err
			}
			if ok {
				gc.counts[child]++
				return child, nil
			}
		case parser.RecordGroup:
			sub := gc.children[child]
			rp, err := sub.dispatch(rec, format)
			if err != nil {
				return nil, err
			}
			if rp != nil {
				return rp, nil
			}
		}
	}
	return nil, nil
}

// satisfiedMin reports whether every child declared directly under gc has
// reached at least its own MinOccurs, recursing into nested groups.
func (gc *groupCursor) satisfiedMin() bool {
	for _, child := range gc.node.Children {
		switch child.Kind {
		case parser.Record:
			if gc.counts[child] < child.MinOccurs {
				return false
			}
		case parser.RecordGroup:
			if !gc.children[child].satisfiedMin() {
				return false
			}
		}
	}
	return true
}

// checkOccurrences validates every reachable Record's MinOccurs/MaxOccurs
// once the stream is exhausted (spec §4.6 "Update record-group occurrence
// counters; raise occurrence error on min/max violations at group
// boundary").
func (gc *groupCursor) checkOccurrences() error {
	for _, child := range gc.node.Children {
		switch child.Kind {
		case parser.Record:
			n := gc.counts[child]
			if n < child.MinOccurs || (child.MaxOccurs != 0 && n > child.MaxOccurs) {
				return &errs.OccurrenceError{RecordName: child.Name, Min: child.MinOccurs, Max: child.MaxOccurs, Count: n}
			}
		case parser.RecordGroup:
			if err := gc.children[child].checkOccurrences(); err != nil {
				return err
			}
		}
	}
	return nil
}
