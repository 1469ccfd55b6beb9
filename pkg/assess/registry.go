package assess

import "fmt"

// Registry is the immutable catalog of known evaluators. It is built once
// at process start and passed explicitly to the resolver and scanner;
// registration order is preserved in every output for determinism.
type Registry struct {
	evaluators []Evaluator
	byID       map[string]Evaluator
}

// NewRegistry builds a registry from evaluators in the given order.
// It fails fast on duplicate attribute ids, negative default weights, and
// tiers outside 1-4.
func NewRegistry(evaluators ...Evaluator) (*Registry, error) {
	r := &Registry{
		evaluators: make([]Evaluator, 0, len(evaluators)),
		byID:       make(map[string]Evaluator, len(evaluators)),
	}
	for _, ev := range evaluators {
		attr := ev.Attribute()
		if attr.ID == "" {
			return nil, &ConfigError{Reason: "evaluator with empty attribute id"}
		}
		if _, dup := r.byID[attr.ID]; dup {
			return nil, &ConfigError{AttributeID: attr.ID, Reason: "duplicate attribute id"}
		}
		if attr.DefaultWeight < 0 {
			return nil, &ConfigError{AttributeID: attr.ID, Reason: fmt.Sprintf("negative default weight %g", attr.DefaultWeight)}
		}
		if attr.Tier < 1 || attr.Tier > 4 {
			return nil, &ConfigError{AttributeID: attr.ID, Reason: fmt.Sprintf("tier %d outside 1-4", attr.Tier)}
		}
		r.byID[attr.ID] = ev
		r.evaluators = append(r.evaluators, ev)
	}
	return r, nil
}

// Attributes returns attribute metadata in registration order.
func (r *Registry) Attributes() []Attribute {
	attrs := make([]Attribute, len(r.evaluators))
	for i, ev := range r.evaluators {
		attrs[i] = ev.Attribute()
	}
	return attrs
}

// Evaluator returns the evaluator for an attribute id.
func (r *Registry) Evaluator(attributeID string) (Evaluator, bool) {
	ev, ok := r.byID[attributeID]
	return ev, ok
}

// Len returns the number of registered evaluators.
func (r *Registry) Len() int { return len(r.evaluators) }

// Effective returns the evaluators whose attributes are not excluded,
// in registration order. Excluded attributes receive no finding and no
// weight; they are removed from the run entirely.
func (r *Registry) Effective(excluded map[string]bool) []Evaluator {
	if len(excluded) == 0 {
		out := make([]Evaluator, len(r.evaluators))
		copy(out, r.evaluators)
		return out
	}
	var out []Evaluator
	for _, ev := range r.evaluators {
		if !excluded[ev.Attribute().ID] {
			out = append(out, ev)
		}
	}
	return out
}
