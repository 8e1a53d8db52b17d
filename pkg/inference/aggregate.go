/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: aggregate.go
Description: Field value aggregator. Collects every value observed for each normalized field
name at one nesting position, across documents and across the elements of repeated values.
*/

package inference

import (
	"strconv"

	"github.com/kleascm/protoinfer/pkg/naming"
)

// unnamedField replaces keys that normalize to an empty identifier
const unnamedField = "unnamed"

// observation holds the raw values seen for one field
type observation struct {
	name    string   // Normalized snake_case name
	key     string   // First JSON key that mapped to name
	aliases []string // Other JSON keys merged into the same field
	values  []any
}

// fieldSet is the ordered collection of observations at one position.
// Order is first discovery order, which becomes field numbering.
// Names sharing a default JSON name ("a1", "a_1") are one field.
type fieldSet struct {
	order  []*observation
	byJSON map[string]*observation
}

func newFieldSet() *fieldSet {
	return &fieldSet{byJSON: make(map[string]*observation)}
}

// observe appends v to the observation of key's normalized name
func (fs *fieldSet) observe(key string, v any) {
	name := naming.ToSnakeCase(key)
	if name == "" {
		name = unnamedField
	}
	id := naming.JSONName(name)
	obs, ok := fs.byJSON[id]
	if !ok {
		obs = &observation{name: name, key: key}
		fs.byJSON[id] = obs
		fs.order = append(fs.order, obs)
	} else if key != obs.key && !obs.hasAlias(key) {
		obs.aliases = append(obs.aliases, key)
	}
	obs.values = append(obs.values, v)
}

func (o *observation) hasAlias(key string) bool {
	for _, a := range o.aliases {
		if a == key {
			return true
		}
	}
	return false
}

func (fs *fieldSet) len() int {
	return len(fs.order)
}

// aggregateObjects unions the keys of every object contribution.
// Keys absent from a contribution are unobserved there, not null.
func aggregateObjects(contributions []any) *fieldSet {
	fs := newFieldSet()
	for _, c := range contributions {
		obj, ok := asObject(c)
		if !ok {
			continue
		}
		for _, key := range obj.Keys {
			fs.observe(key, obj.Values[key])
		}
	}
	return fs
}

// aggregatePositional treats each array contribution as a row whose
// element i is observed under the key "_i"
func aggregatePositional(rows []any) *fieldSet {
	fs := newFieldSet()
	for _, r := range rows {
		row, ok := r.([]any)
		if !ok {
			continue
		}
		for i, v := range row {
			fs.observe("_"+strconv.Itoa(i), v)
		}
	}
	return fs
}

// wrapValues turns non-object documents into {"value": doc} contributions
func wrapValues(docs []any) []any {
	wrapped := make([]any, len(docs))
	for i, d := range docs {
		obj := NewObject()
		obj.Set(rootValueField, d)
		wrapped[i] = obj
	}
	return wrapped
}

// flattenArrays collects the elements of every array value
func flattenArrays(values []any) []any {
	var elems []any
	for _, v := range values {
		if arr, ok := v.([]any); ok {
			elems = append(elems, arr...)
		}
	}
	return elems
}

// nonNull drops explicit nulls
func nonNull(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
