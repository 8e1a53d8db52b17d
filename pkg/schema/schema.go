/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: schema.go
Description: Descriptor tree for inferred proto3 schemas. Messages live in a flat table owned
by File and reference each other by index, so the tree can be rendered, exported and compared
without pointer aliasing.
*/

package schema

import (
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
)

// Well-known types used as fallbacks for ambiguous or dynamic JSON shapes
const (
	TypeValue = "google.protobuf.Value"
	TypeAny   = "google.protobuf.Any"

	ImportStruct = "google/protobuf/struct.proto"
	ImportAny    = "google/protobuf/any.proto"
)

// Scalar proto types emitted by the inference engine
const (
	TypeString = "string"
	TypeInt64  = "int64"
	TypeDouble = "double"
	TypeBool   = "bool"
)

// NoMessage marks a field whose type is not a generated message
const NoMessage = -1

// Field describes one proto field of a generated message
type Field struct {
	Name     string `json:"name" yaml:"name"`                             // Normalized snake_case name
	Key      string `json:"key" yaml:"key"`                               // First JSON key that produced the field
	JSONName string `json:"json_name,omitempty" yaml:"json_name,omitempty"` // Explicit json_name option, empty for the default
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`         // Scalar or well-known type name
	Message  int    `json:"message" yaml:"message"`                       // Index of the generated message type, NoMessage otherwise
	Repeated bool   `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	MapKey   string `json:"map_key,omitempty" yaml:"map_key,omitempty"` // Key type when the field is a map
	Number   int    `json:"number" yaml:"number"`
}

// IsMap reports whether the field renders as map<MapKey, Type>
func (f Field) IsMap() bool {
	return f.MapKey != ""
}

// Message describes one generated message
type Message struct {
	Name      string  `json:"name" yaml:"name"`
	Parent    int     `json:"parent" yaml:"parent"` // Index of the enclosing message, -1 for top-level
	Fields    []Field `json:"fields" yaml:"fields"`
	Nested    []int   `json:"nested,omitempty" yaml:"nested,omitempty"`
	Signature string  `json:"signature" yaml:"signature"` // Structural signature of the field list
}

// File is a complete inferred schema
type File struct {
	Package  string    `json:"package,omitempty" yaml:"package,omitempty"`
	Imports  ImportSet `json:"imports" yaml:"imports"`
	Messages []Message `json:"messages" yaml:"messages"`
	Roots    []int     `json:"roots" yaml:"roots"`
}

// NewFile creates an empty schema for the given package
func NewFile(pkg string) *File {
	return &File{
		Package: pkg,
		Imports: NewImportSet(),
	}
}

// Add appends a message to the table and returns its index
func (f *File) Add(m Message) int {
	f.Messages = append(f.Messages, m)
	return len(f.Messages) - 1
}

// Lookup finds a top-level or nested message by its dotted path relative to the package
func (f *File) Lookup(path string) (Message, bool) {
	for i := range f.Messages {
		if f.path(i) == path {
			return f.Messages[i], true
		}
	}
	return Message{}, false
}

// FullName returns the fully qualified name of a message including the package
func (f *File) FullName(idx int) string {
	if f.Package == "" {
		return f.path(idx)
	}
	return f.Package + "." + f.path(idx)
}

func (f *File) path(idx int) string {
	var parts []string
	for i := idx; i >= 0; i = f.Messages[i].Parent {
		parts = append(parts, f.Messages[i].Name)
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ".")
}

// TypeRef returns the type name of a field as written inside message owner.
// Messages nested directly in owner use their short name, anything else is
// referenced by its fully qualified name.
func (f *File) TypeRef(owner int, field Field) string {
	if field.Message == NoMessage {
		return field.Type
	}
	if f.Messages[field.Message].Parent == owner {
		return f.Messages[field.Message].Name
	}
	return "." + f.FullName(field.Message)
}

// ImportSet is a deduplicated set of import paths
type ImportSet map[string]struct{}

// NewImportSet creates an empty import set
func NewImportSet() ImportSet {
	return make(ImportSet)
}

// Add records an import path
func (s ImportSet) Add(path string) {
	s[path] = struct{}{}
}

// Has reports whether the path was recorded
func (s ImportSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the import paths in canonical order
func (s ImportSet) Sorted() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MarshalJSON renders the set as a sorted list
func (s ImportSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// MarshalYAML renders the set as a sorted list
func (s ImportSet) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

// ImportFor returns the import path that declares a well-known type, or "" for other types
func ImportFor(typeName string) string {
	switch typeName {
	case TypeValue:
		return ImportStruct
	case TypeAny:
		return ImportAny
	default:
		return ""
	}
}
