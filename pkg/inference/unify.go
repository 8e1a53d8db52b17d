/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: unify.go
Description: Type unifier. Reduces the signatures observed for a field to one proto type and a
repetition flag, widening int+double to double and falling back to well-known types for null,
empty or mixed observations.
*/

package inference

import (
	"strings"

	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/schema"
)

// fieldType is the unified type of one field
type fieldType struct {
	typeName string // Scalar or well-known type; empty for generated messages
	message  int
	repeated bool
	mapKey   string
}

func scalarType(name string, repeated bool) fieldType {
	return fieldType{typeName: name, message: schema.NoMessage, repeated: repeated}
}

func messageType(idx int, repeated bool) fieldType {
	return fieldType{message: idx, repeated: repeated}
}

// unify decides the type of the field observed in obs, declared in message owner.
// A null next to a single concrete type never makes the field ambiguous.
func (c *buildContext) unify(owner, path string, obs *observation, depth int) (fieldType, error) {
	sigs := c.signatures(obs.values)
	concrete := sigs.concrete()

	if len(concrete) == 1 && concrete[0] == SigObject && c.wantsMap(owner, path, obs) {
		return c.mapType(path, obs, depth)
	}

	switch {
	case len(concrete) == 0:
		c.warnings.add("field %s is null in every sample; using %s", path, schema.TypeValue)
		return scalarType(schema.TypeValue, false), nil

	case len(concrete) == 1 && concrete[0] == SigArray:
		return c.unifyElements(path, obs.name, flattenArrays(obs.values), depth)

	case len(concrete) == 1:
		return c.singleType(concrete[0], path, obs.name, nonNull(obs.values), depth, false)

	case numericOnly(concrete):
		return scalarType(schema.TypeDouble, false), nil

	default:
		c.warnings.add("field %s has mixed types (%s); using %s", path, strings.Join(sigs.names(), ", "), schema.TypeValue)
		return scalarType(schema.TypeValue, sigs.has(SigArray)), nil
	}
}

// unifyElements decides the element type of a repeated field from the
// elements of every array observed for it
func (c *buildContext) unifyElements(path, base string, elems []any, depth int) (fieldType, error) {
	if len(elems) == 0 {
		c.warnings.add("field %s is an empty array in every sample; using repeated %s", path, schema.TypeAny)
		return scalarType(schema.TypeAny, true), nil
	}

	sigs := c.signatures(elems)
	concrete := sigs.concrete()

	switch {
	case len(concrete) == 0:
		c.warnings.add("field %s only holds null elements; using repeated %s", path, schema.TypeValue)
		return scalarType(schema.TypeValue, true), nil

	case len(concrete) == 1 && concrete[0] == SigArray:
		name := messageName(naming.ToPascalCase(naming.Singular(base)) + "Row")
		idx, err := c.buildMessage(name, path, aggregatePositional(nonNull(elems)), depth+1, true)
		if err != nil {
			return fieldType{}, err
		}
		return messageType(idx, true), nil

	case len(concrete) == 1 && concrete[0] == SigObject:
		name := messageName(naming.ToPascalCase(naming.Singular(base)))
		idx, err := c.buildMessage(name, path, aggregateObjects(nonNull(elems)), depth+1, true)
		if err != nil {
			return fieldType{}, err
		}
		return messageType(idx, true), nil

	case len(concrete) == 1:
		return c.singleType(concrete[0], path, base, nil, depth, true)

	case numericOnly(concrete):
		return scalarType(schema.TypeDouble, true), nil

	default:
		c.warnings.add("field %s has mixed element types (%s); using repeated %s", path, strings.Join(sigs.names(), ", "), schema.TypeValue)
		return scalarType(schema.TypeValue, true), nil
	}
}

// singleType maps one concrete signature to a proto type, synthesizing a
// nested message for objects
func (c *buildContext) singleType(sig Signature, path, base string, values []any, depth int, repeated bool) (fieldType, error) {
	switch sig {
	case SigInt:
		return scalarType(schema.TypeInt64, repeated), nil
	case SigDouble:
		return scalarType(schema.TypeDouble, repeated), nil
	case SigBool:
		return scalarType(schema.TypeBool, repeated), nil
	case SigString:
		return scalarType(schema.TypeString, repeated), nil
	case SigObject:
		name := messageName(naming.ToPascalCase(base))
		idx, err := c.buildMessage(name, path, aggregateObjects(values), depth+1, true)
		if err != nil {
			return fieldType{}, err
		}
		return messageType(idx, repeated), nil
	default:
		// arrays and nulls are resolved by the callers
		return scalarType(schema.TypeValue, repeated), nil
	}
}
