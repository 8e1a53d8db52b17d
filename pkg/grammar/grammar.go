/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Seeded JSON sample grammar. Generates random but reproducible sample documents
with nested objects, arrays, nulls and mixed types, and mutates samples while keeping them
valid JSON. Drives property tests of the inference pipeline.
*/

package grammar

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-json-experiment/json"
)

// Grammar generates and mutates sample documents
type Grammar interface {
	// Generate returns a new valid document
	Generate() ([]byte, error)
	// Mutate returns a changed, still valid, copy of a document
	Mutate(input []byte) ([]byte, error)
	// Name returns the name of the grammar
	Name() string
}

// Key pools. Shared names make field sets overlap across documents.
var (
	fieldKeys  = []string{"id", "name", "userId", "user_id", "tags", "items", "meta", "score", "active", "address", "created-at", "Value", "2fa", ""}
	stringVals = []string{"", "x", "hello world", "ünïcode", "a\"quote"}
)

// JSONGrammar produces JSON documents from a seeded random source
type JSONGrammar struct {
	rng      *rand.Rand
	MaxDepth int // Deepest object or array nesting generated
	MaxKeys  int // Most keys per generated object
}

// NewJSONGrammar creates a grammar whose output depends only on seed
func NewJSONGrammar(seed int64) *JSONGrammar {
	return &JSONGrammar{
		rng:      rand.New(rand.NewSource(seed)),
		MaxDepth: 4,
		MaxKeys:  6,
	}
}

// Generate returns a random JSON object
func (g *JSONGrammar) Generate() ([]byte, error) {
	return g.marshal(g.object(0))
}

// Documents returns n generated documents separated by blank lines
func (g *JSONGrammar) Documents(n int) (string, error) {
	var out []byte
	for i := 0; i < n; i++ {
		doc, err := g.Generate()
		if err != nil {
			return "", err
		}
		if i > 0 {
			out = append(out, "\n\n"...)
		}
		out = append(out, doc...)
	}
	return string(out), nil
}

// Mutate replaces the value of one top-level key with a freshly generated one
func (g *JSONGrammar) Mutate(input []byte) ([]byte, error) {
	var obj map[string]any
	if err := json.Unmarshal(input, &obj); err != nil || obj == nil {
		return g.Generate()
	}
	if len(obj) == 0 {
		obj[g.pick(fieldKeys)] = g.value(1)
		return g.marshal(obj)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj[keys[g.rng.Intn(len(keys))]] = g.value(1)
	return g.marshal(obj)
}

// Name returns the name of the grammar
func (g *JSONGrammar) Name() string {
	return "JSONGrammar"
}

func (g *JSONGrammar) marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample: %w", err)
	}
	return data, nil
}

func (g *JSONGrammar) object(depth int) map[string]any {
	obj := make(map[string]any)
	n := g.rng.Intn(g.MaxKeys + 1)
	for i := 0; i < n; i++ {
		obj[g.pick(fieldKeys)] = g.value(depth + 1)
	}
	return obj
}

func (g *JSONGrammar) value(depth int) any {
	kinds := 8
	if depth >= g.MaxDepth {
		kinds = 6 // scalars and null only
	}

	switch g.rng.Intn(kinds) {
	case 0:
		return nil
	case 1:
		return g.rng.Intn(2) == 1
	case 2:
		return g.rng.Int63n(1<<40) - 1<<39
	case 3:
		return float64(g.rng.Intn(10000)) / 8
	case 4, 5:
		return g.pick(stringVals)
	case 6:
		return g.object(depth)
	default:
		arr := make([]any, g.rng.Intn(4))
		elem := g.value(depth + 1)
		for i := range arr {
			// mostly homogeneous arrays, sometimes mixed
			if g.rng.Intn(4) == 0 {
				arr[i] = g.value(depth + 1)
			} else {
				arr[i] = elem
			}
		}
		return arr
	}
}

func (g *JSONGrammar) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}
