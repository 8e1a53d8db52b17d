/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: maps.go
Description: Map field refinement. Object-typed fields named in the configured map hints, or
matching the opt-in key heuristic, are emitted as map<string, V> instead of a nested message.
*/

package inference

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/schema"
)

// minMapKeys is the smallest key count the heuristic treats as a map
const minMapKeys = 2

// wantsMap reports whether an object-typed field should become a map.
// owner is empty when maps are not allowed at this position (map values).
// Fields whose implicit entry name would not be an identifier ("_2fa") stay messages.
func (c *buildContext) wantsMap(owner, path string, obs *observation) bool {
	if owner == "" || !naming.IsIdentifier(naming.MapEntryName(obs.name)) {
		return false
	}

	hinted := c.hinted(owner, obs)
	if !hinted && !c.opts.DetectMaps {
		return false
	}

	objects := nonNull(obs.values)
	for _, v := range mapValues(objects) {
		if Classify(v) == SigArray {
			if hinted {
				c.warnings.add("map hint for %s ignored: map values cannot be lists", path)
			}
			return false
		}
	}

	return hinted || looksLikeMap(objects)
}

// hinted reports whether the map hints name this field of owner.
// Message names match case-insensitively since config keys are lowercased.
func (c *buildContext) hinted(owner string, obs *observation) bool {
	for msg, fields := range c.opts.MapHints {
		if !strings.EqualFold(msg, owner) {
			continue
		}
		for _, f := range fields {
			if f == obs.name || f == obs.key {
				return true
			}
		}
	}
	return false
}

// mapType unifies every value of every observed object into the map value type
func (c *buildContext) mapType(path string, obs *observation, depth int) (fieldType, error) {
	values := mapValues(nonNull(obs.values))
	if len(values) == 0 {
		c.warnings.add("map field %s has no entries in any sample; using %s values", path, schema.TypeValue)
		ft := scalarType(schema.TypeValue, false)
		ft.mapKey = schema.TypeString
		return ft, nil
	}

	valueObs := &observation{name: obs.name + "_value", key: obs.key, values: values}
	ft, err := c.unify("", path+".value", valueObs, depth)
	if err != nil {
		return fieldType{}, err
	}
	ft.repeated = false
	ft.mapKey = schema.TypeString
	return ft, nil
}

// looksLikeMap applies the key heuristic: enough keys, every key data-like,
// and all values sharing one type
func looksLikeMap(objects []any) bool {
	seen := make(map[string]struct{})
	for _, o := range objects {
		obj, ok := asObject(o)
		if !ok {
			return false
		}
		for _, k := range obj.Keys {
			if !dataLikeKey(k) {
				return false
			}
			seen[k] = struct{}{}
		}
	}
	if len(seen) < minMapKeys {
		return false
	}

	sigs := make(sigSet)
	for _, v := range mapValues(objects) {
		sigs[Classify(v)] = struct{}{}
	}
	concrete := sigs.concrete()
	return len(concrete) == 1 || numericOnly(concrete)
}

// dataLikeKey reports whether a key looks like data rather than a field name:
// an integer, a UUID, or anything that is not identifier-shaped
func dataLikeKey(key string) bool {
	if _, err := strconv.ParseInt(key, 10, 64); err == nil {
		return true
	}
	if _, err := uuid.Parse(key); err == nil {
		return true
	}
	return !identifierShaped(key)
}

func identifierShaped(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// mapValues collects the values of every key of every object
func mapValues(objects []any) []any {
	var values []any
	for _, o := range objects {
		obj, ok := asObject(o)
		if !ok {
			continue
		}
		for _, k := range obj.Keys {
			values = append(values, obj.Values[k])
		}
	}
	return values
}
