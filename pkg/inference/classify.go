/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classify.go
Description: Value classifier. Maps a single decoded JSON value to its type signature. Every
classification in the engine goes through Classify.
*/

package inference

import (
	"encoding/json"
	"math"
	"sort"
)

// Signature is the type signature of a single JSON value
type Signature int

const (
	SigNull Signature = iota
	SigArray
	SigInt
	SigDouble
	SigBool
	SigString
	SigObject
)

var signatureNames = [...]string{
	SigNull:   "null",
	SigArray:  "array",
	SigInt:    "int",
	SigDouble: "double",
	SigBool:   "bool",
	SigString: "string",
	SigObject: "object",
}

func (s Signature) String() string {
	if s < 0 || int(s) >= len(signatureNames) {
		return "unknown"
	}
	return signatureNames[s]
}

// Classify returns the signature of v. Precedence: null, array, number,
// bool, string, object. Values of any other Go type classify as string.
func Classify(v any) Signature {
	switch val := v.(type) {
	case nil:
		return SigNull
	case []any:
		return SigArray
	case Number:
		if val.Integral() {
			return SigInt
		}
		return SigDouble
	case json.Number:
		if Number(val).Integral() {
			return SigInt
		}
		return SigDouble
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return SigInt
		}
		return SigDouble
	case int, int32, int64:
		return SigInt
	case bool:
		return SigBool
	case string:
		return SigString
	case *Object, map[string]any:
		return SigObject
	default:
		return SigString
	}
}

// sigSet is the set of distinct signatures observed for one field
type sigSet map[Signature]struct{}

func (s sigSet) has(sig Signature) bool {
	_, ok := s[sig]
	return ok
}

// concrete returns the non-null members in signature order
func (s sigSet) concrete() []Signature {
	out := make([]Signature, 0, len(s))
	for sig := range s {
		if sig != SigNull {
			out = append(out, sig)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s sigSet) names() []string {
	sigs := make([]Signature, 0, len(s))
	for sig := range s {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i] < sigs[j] })
	names := make([]string, len(sigs))
	for i, sig := range sigs {
		names[i] = sig.String()
	}
	return names
}

// numericOnly reports whether the concrete members are exactly {int, double}
func numericOnly(concrete []Signature) bool {
	return len(concrete) == 2 && concrete[0] == SigInt && concrete[1] == SigDouble
}
