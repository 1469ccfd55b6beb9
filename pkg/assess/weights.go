package assess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// WeightSumTolerance is the allowed floating-point drift on the invariant
// that included weights sum to 1.0.
const WeightSumTolerance = 1e-6

// WeightTable maps attribute ids to normalized weights. Iteration order is
// the registry order captured at resolution time, so identical inputs
// produce bit-for-bit identical tables and serialized output.
//
// Excluded attributes are absent from the table, which is different from a
// zero weight: a zero-weight attribute is still assessed and still needs a
// finding, an absent one is not assessed at all.
type WeightTable struct {
	ids     []string
	weights map[string]float64
}

// IDs returns attribute ids in table order.
func (t *WeightTable) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Weight returns the normalized weight for an attribute and whether the
// attribute is included in the table at all.
func (t *WeightTable) Weight(attributeID string) (float64, bool) {
	w, ok := t.weights[attributeID]
	return w, ok
}

// Len returns the number of included attributes.
func (t *WeightTable) Len() int { return len(t.ids) }

// Sum returns the total of all included weights.
func (t *WeightTable) Sum() float64 {
	var sum float64
	for _, id := range t.ids {
		sum += t.weights[id]
	}
	return sum
}

// MarshalJSON writes the table as a JSON object in table order.
func (t *WeightTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range t.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(t.weights[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving its key order as the table
// order.
func (t *WeightTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("weight table: expected JSON object")
	}
	t.ids = nil
	t.weights = make(map[string]float64)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id := keyTok.(string)
		var w float64
		if err := dec.Decode(&w); err != nil {
			return fmt.Errorf("weight table: attribute %q: %w", id, err)
		}
		if _, dup := t.weights[id]; !dup {
			t.ids = append(t.ids, id)
		}
		t.weights[id] = w
	}
	_, err = dec.Token() // closing brace
	return err
}

// ResolveWeights merges default attribute weights with user overrides and
// exclusions into a normalized table summing to 1.0.
//
// The transformation is pure: it performs no I/O and iterates attributes in
// the given (registry) order, so its output is reproducible. Overrides that
// reference unknown or excluded attributes, negative overrides, and a zero
// remaining sum are all terminal configuration errors.
func ResolveWeights(attrs []Attribute, overrides map[string]float64, excluded []string) (*WeightTable, error) {
	known := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		known[a.ID] = true
	}

	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		if !known[id] {
			return nil, &ConfigError{AttributeID: id, Reason: "excluded attribute is not in the registry"}
		}
		excludedSet[id] = true
	}

	for id, w := range overrides {
		if !known[id] {
			return nil, &ConfigError{AttributeID: id, Reason: "weight override references unknown attribute"}
		}
		if excludedSet[id] {
			return nil, &ConfigError{AttributeID: id, Reason: "weight override references excluded attribute"}
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, &ConfigError{AttributeID: id, Reason: fmt.Sprintf("invalid weight override %g", w)}
		}
	}

	t := &WeightTable{weights: make(map[string]float64)}
	var sum float64
	for _, a := range attrs {
		if excludedSet[a.ID] {
			continue
		}
		w := a.DefaultWeight
		if ov, ok := overrides[a.ID]; ok {
			w = ov
		}
		t.ids = append(t.ids, a.ID)
		t.weights[a.ID] = w
		sum += w
	}

	if len(t.ids) == 0 {
		return nil, &ConfigError{Reason: "all attributes excluded, nothing to assess"}
	}
	if sum <= 0 {
		return nil, &ConfigError{Reason: "weight table sums to zero, cannot normalize"}
	}

	for _, id := range t.ids {
		t.weights[id] /= sum
	}
	return t, nil
}
