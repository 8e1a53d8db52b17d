/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: documents.go
Description: Document parser for schema inference. Splits raw input into independent JSON
documents (whole-input array, blank lines, dashed separators, adjacent values) and decodes
them into an order-preserving value tree.
*/

package inference

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

var (
	separatorLine = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)
	blankLineRun  = regexp.MustCompile(`\n[ \t]*\n`)
)

// Number is a JSON number kept in its literal form
type Number string

// Float returns the numeric value of the literal
func (n Number) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Integral reports whether the number is mathematically an integer.
// Literals without fraction or exponent are integral regardless of magnitude.
func (n Number) Integral() bool {
	if !strings.ContainsAny(string(n), ".eE") {
		return true
	}
	f, err := n.Float()
	if err != nil || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f)
}

// Object is a JSON object that remembers key order
type Object struct {
	Keys   []string
	Values map[string]any
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{Values: make(map[string]any)}
}

// Set stores a value; a repeated key keeps its first position and the last value
func (o *Object) Set(key string, v any) {
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = v
}

// Get returns the value stored under key
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.Keys)
}

// asObject returns v as an ordered object. Go maps are accepted with their
// keys in sorted order.
func asObject(v any) (*Object, bool) {
	switch val := v.(type) {
	case *Object:
		return val, true
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, val[k])
		}
		return obj, true
	default:
		return nil, false
	}
}

// ParseDocuments splits raw input into parsed JSON documents.
// A whole-input array of objects contributes one document per element.
func ParseDocuments(raw string) ([]any, error) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if text == "" {
		return nil, newError(KindEmptyInput, "input is empty")
	}

	if v, err := decodeSingle(text); err == nil {
		if arr, ok := v.([]any); ok && len(arr) > 0 && allObjects(arr) {
			return arr, nil
		}
		return []any{v}, nil
	}

	var docs []any
	for _, fragment := range splitDocuments(text) {
		values, err := decodeStream(fragment)
		if err != nil {
			return nil, &Error{
				Kind:     KindInvalidJSON,
				Message:  "invalid JSON",
				Fragment: fragment,
				Err:      err,
			}
		}
		docs = append(docs, values...)
	}

	if len(docs) == 0 {
		return nil, newError(KindNoDocumentsFound, "no JSON documents found in input")
	}
	return docs, nil
}

// splitDocuments cuts text on dashed separator lines and blank-line runs
func splitDocuments(text string) []string {
	text = separatorLine.ReplaceAllString(text, "\n")
	parts := blankLineRun.Split(text, -1)

	fragments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fragments = append(fragments, p)
		}
	}
	return fragments
}

func newDecoder(text string) *jsontext.Decoder {
	return jsontext.NewDecoder(strings.NewReader(text), jsontext.AllowDuplicateNames(true))
}

// decodeSingle decodes text that must hold exactly one JSON value
func decodeSingle(text string) (any, error) {
	dec := newDecoder(text)
	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// decodeStream decodes every consecutive JSON value in text
func decodeStream(text string) ([]any, error) {
	dec := newDecoder(text)
	var values []any
	for {
		v, err := readValue(dec)
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

// readValue reads one complete value from the token stream
func readValue(dec *jsontext.Decoder) (any, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '0':
		return Number(tok.String()), nil
	case '{':
		obj := NewObject()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			// The token is only valid until the next read.
			key := name.String()
			v, err := readValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj.Set(key, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return obj, nil
	case '[':
		arr := make([]any, 0)
		for dec.PeekKind() != ']' {
			v, err := readValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// unexpectedEOF turns a clean EOF inside a value into io.ErrUnexpectedEOF
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func allObjects(values []any) bool {
	for _, v := range values {
		if _, ok := v.(*Object); !ok {
			return false
		}
	}
	return true
}
