package hrv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureSet is an ordered collection of named feature values. Scalar
// features are float64 (counts are int); the interval series itself is
// stored as []float64. Insertion order is preserved for iteration and
// JSON encoding.
type FeatureSet struct {
	names  []string
	values map[string]any
}

// feature is a name/value pair for batch appends
type feature struct {
	name  string
	value any
}

// NewFeatureSet creates an empty feature set
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{values: make(map[string]any)}
}

// Append adds a named value to the end of the set. Names are unique;
// appending a duplicate is an error.
func (fs *FeatureSet) Append(name string, value any) error {
	if _, exists := fs.values[name]; exists {
		return fmt.Errorf("feature %q already present", name)
	}
	fs.names = append(fs.names, name)
	fs.values[name] = value
	return nil
}

// Join appends every feature of other in its insertion order
func (fs *FeatureSet) Join(other *FeatureSet) error {
	if other == nil {
		return nil
	}
	for _, name := range other.names {
		if err := fs.Append(name, other.values[name]); err != nil {
			return err
		}
	}
	return nil
}

// appendFeatures appends the pairs in order, stopping at the first error
func appendFeatures(fs *FeatureSet, pairs ...feature) error {
	for _, p := range pairs {
		if err := fs.Append(p.name, p.value); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the feature names in insertion order
func (fs *FeatureSet) Names() []string {
	names := make([]string, len(fs.names))
	copy(names, fs.names)
	return names
}

// Get returns the named value and whether it is present
func (fs *FeatureSet) Get(name string) (any, bool) {
	value, exists := fs.values[name]
	return value, exists
}

// Float64 returns the named value as a float64. Integer counts are
// converted; missing names and non-scalar features report false.
func (fs *FeatureSet) Float64(name string) (float64, bool) {
	switch v := fs.values[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Len returns the number of features in the set
func (fs *FeatureSet) Len() int {
	return len(fs.names)
}

// MarshalJSON encodes the set as a JSON object in insertion order
func (fs *FeatureSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range fs.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(fs.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
