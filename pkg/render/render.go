/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: render.go
Description: Proto3 source renderer. Serializes an inferred schema into .proto text with the
syntax line, optional package, sorted imports and message bodies whose nested messages are
indented two spaces per level.
*/

package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kleascm/protoinfer/pkg/schema"
)

const indentUnit = "  "

// Render serializes the schema into proto3 source text.
// Output uses LF line endings and ends with a newline.
func Render(f *schema.File) string {
	var b strings.Builder

	b.WriteString("syntax = \"proto3\";\n")

	if f.Package != "" {
		fmt.Fprintf(&b, "\npackage %s;\n", f.Package)
	}

	if imports := f.Imports.Sorted(); len(imports) > 0 {
		b.WriteString("\n")
		for _, imp := range imports {
			fmt.Fprintf(&b, "import %q;\n", imp)
		}
	}

	for _, idx := range f.Roots {
		b.WriteString("\n")
		writeMessage(&b, f, idx, 0)
	}

	return b.String()
}

// writeMessage writes one message body, fields first and nested messages after
func writeMessage(b *strings.Builder, f *schema.File, idx int, depth int) {
	msg := f.Messages[idx]
	indent := strings.Repeat(indentUnit, depth)

	if len(msg.Fields) == 0 && len(msg.Nested) == 0 {
		fmt.Fprintf(b, "%smessage %s {}\n", indent, msg.Name)
		return
	}

	fmt.Fprintf(b, "%smessage %s {\n", indent, msg.Name)

	fields := make([]schema.Field, len(msg.Fields))
	copy(fields, msg.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Number < fields[j].Number
	})
	for _, field := range fields {
		b.WriteString(indent + indentUnit + FieldLine(f, idx, field) + "\n")
	}

	for i, nested := range msg.Nested {
		if i > 0 || len(fields) > 0 {
			b.WriteString("\n")
		}
		writeMessage(b, f, nested, depth+1)
	}

	fmt.Fprintf(b, "%s}\n", indent)
}

// FieldLine renders a single field declaration as it appears inside message owner
func FieldLine(f *schema.File, owner int, field schema.Field) string {
	typeName := f.TypeRef(owner, field)

	options := ""
	if field.JSONName != "" {
		options = fmt.Sprintf(" [json_name = \"%s\"]", escapeString(field.JSONName))
	}

	if field.IsMap() {
		return fmt.Sprintf("map<%s, %s> %s = %d%s;", field.MapKey, typeName, field.Name, field.Number, options)
	}

	rule := ""
	if field.Repeated {
		rule = "repeated "
	}
	return fmt.Sprintf("%s%s %s = %d%s;", rule, typeName, field.Name, field.Number, options)
}

// escapeString escapes a value for a double-quoted proto string literal
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
