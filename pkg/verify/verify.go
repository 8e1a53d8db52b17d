/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Verification of rendered proto3 text. Compiles the generated source with a real
protobuf parser, resolving well-known imports, and summarizes the compiled messages so callers
and tests can check what a protobuf toolchain would see.
*/

package verify

import (
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// FieldSummary is what the compiler reports for one field
type FieldSummary struct {
	Name     string
	Number   int32
	Type     string // Scalar keyword or fully qualified message name
	Repeated bool
	Map      bool
	MapKey   string // Key scalar of a map field
	JSONName string
}

// MessageSummary is what the compiler reports for one message
type MessageSummary struct {
	FullName string
	Fields   []FieldSummary
}

// Report lists every message of the compiled file, nested ones included
type Report struct {
	Package  string
	Imports  []string
	Messages map[string]MessageSummary // Keyed by fully qualified name
}

// Message returns the summary for a fully qualified message name
func (r *Report) Message(fullName string) (MessageSummary, bool) {
	m, ok := r.Messages[fullName]
	return m, ok
}

// Field returns a field of a message by name
func (m MessageSummary) Field(name string) (FieldSummary, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSummary{}, false
}

// Compile parses proto source text as a file named fileName
func Compile(fileName, source string) (*desc.FileDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{fileName: source}),
	}
	fds, err := parser.ParseFiles(fileName)
	if err != nil {
		return nil, fmt.Errorf("generated proto does not compile: %w", err)
	}
	return fds[0], nil
}

// Check compiles proto source text and summarizes its messages
func Check(fileName, source string) (*Report, error) {
	fd, err := Compile(fileName, source)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Package:  fd.GetPackage(),
		Messages: make(map[string]MessageSummary),
	}
	for _, dep := range fd.GetDependencies() {
		report.Imports = append(report.Imports, dep.GetName())
	}
	for _, md := range fd.GetMessageTypes() {
		summarize(md, report)
	}
	return report, nil
}

func summarize(md *desc.MessageDescriptor, report *Report) {
	if md.IsMapEntry() {
		return
	}

	summary := MessageSummary{FullName: md.GetFullyQualifiedName()}
	for _, fld := range md.GetFields() {
		fs := FieldSummary{
			Name:     fld.GetName(),
			Number:   fld.GetNumber(),
			Repeated: fld.IsRepeated() && !fld.IsMap(),
			Map:      fld.IsMap(),
			JSONName: fld.GetJSONName(),
		}
		switch {
		case fld.IsMap():
			fs.MapKey = typeName(fld.GetMapKeyType())
			fs.Type = typeName(fld.GetMapValueType())
		default:
			fs.Type = typeName(fld)
		}
		summary.Fields = append(summary.Fields, fs)
	}
	report.Messages[summary.FullName] = summary

	for _, nested := range md.GetNestedMessageTypes() {
		summarize(nested, report)
	}
}

func typeName(fld *desc.FieldDescriptor) string {
	if mt := fld.GetMessageType(); mt != nil {
		return mt.GetFullyQualifiedName()
	}
	return strings.ToLower(strings.TrimPrefix(fld.GetType().String(), "TYPE_"))
}
