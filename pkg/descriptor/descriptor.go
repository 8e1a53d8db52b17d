/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: descriptor.go
Description: Descriptor export for inferred schemas. Converts the descriptor table into a
FileDescriptorProto, validates it against the well-known types with protodesc and serializes
self-contained FileDescriptorSets.
*/

package descriptor

import (
	"fmt"

	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/schema"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

var scalarTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	schema.TypeString: descriptorpb.FieldDescriptorProto_TYPE_STRING,
	schema.TypeInt64:  descriptorpb.FieldDescriptorProto_TYPE_INT64,
	schema.TypeDouble: descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	schema.TypeBool:   descriptorpb.FieldDescriptorProto_TYPE_BOOL,
}

// wellKnownFiles are the dependency files an inferred schema may import
var wellKnownFiles = map[string]protoreflect.FileDescriptor{
	schema.ImportStruct: structpb.File_google_protobuf_struct_proto,
	schema.ImportAny:    anypb.File_google_protobuf_any_proto,
}

// Build converts an inferred schema into a FileDescriptorProto named fileName
func Build(f *schema.File, fileName string) (*descriptorpb.FileDescriptorProto, error) {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(fileName),
		Syntax:     proto.String("proto3"),
		Dependency: f.Imports.Sorted(),
	}
	if f.Package != "" {
		fdp.Package = proto.String(f.Package)
	}

	for _, idx := range f.Roots {
		msg, err := buildMessage(f, idx)
		if err != nil {
			return nil, err
		}
		fdp.MessageType = append(fdp.MessageType, msg)
	}
	return fdp, nil
}

// Validate builds the file and links it against the well-known types
func Validate(f *schema.File, fileName string) (protoreflect.FileDescriptor, error) {
	fdp, err := Build(f, fileName)
	if err != nil {
		return nil, err
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor for %s: %w", fileName, err)
	}
	return fd, nil
}

// MarshalSet validates the schema and serializes it, with its well-known
// dependencies, as a binary FileDescriptorSet
func MarshalSet(f *schema.File, fileName string) ([]byte, error) {
	if _, err := Validate(f, fileName); err != nil {
		return nil, err
	}
	fdp, err := Build(f, fileName)
	if err != nil {
		return nil, err
	}

	set := &descriptorpb.FileDescriptorSet{}
	for _, dep := range f.Imports.Sorted() {
		wk, ok := wellKnownFiles[dep]
		if !ok {
			return nil, fmt.Errorf("unknown dependency %q", dep)
		}
		set.File = append(set.File, protodesc.ToFileDescriptorProto(wk))
	}
	set.File = append(set.File, fdp)

	data, err := proto.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal descriptor set: %w", err)
	}
	return data, nil
}

func buildMessage(f *schema.File, idx int) (*descriptorpb.DescriptorProto, error) {
	msg := f.Messages[idx]
	dp := &descriptorpb.DescriptorProto{Name: proto.String(msg.Name)}

	for _, nested := range msg.Nested {
		child, err := buildMessage(f, nested)
		if err != nil {
			return nil, err
		}
		dp.NestedType = append(dp.NestedType, child)
	}

	for _, field := range msg.Fields {
		fp := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(field.Name),
			Number: proto.Int32(int32(field.Number)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}
		if field.JSONName != "" {
			fp.JsonName = proto.String(field.JSONName)
		}

		if field.IsMap() {
			entry, err := mapEntry(f, field)
			if err != nil {
				return nil, err
			}
			dp.NestedType = append(dp.NestedType, entry)
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
			fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			fp.TypeName = proto.String("." + f.FullName(idx) + "." + entry.GetName())
			dp.Field = append(dp.Field, fp)
			continue
		}

		if field.Repeated {
			fp.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}
		if err := setType(f, fp, field); err != nil {
			return nil, fmt.Errorf("message %s: %w", f.FullName(idx), err)
		}
		dp.Field = append(dp.Field, fp)
	}
	return dp, nil
}

// mapEntry builds the synthetic key/value message protoc generates for map fields
func mapEntry(f *schema.File, field schema.Field) (*descriptorpb.DescriptorProto, error) {
	key := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("key"),
		JsonName: proto.String("key"),
		Number:   proto.Int32(1),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	if err := setType(f, key, schema.Field{Type: field.MapKey, Message: schema.NoMessage}); err != nil {
		return nil, err
	}

	value := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("value"),
		JsonName: proto.String("value"),
		Number:   proto.Int32(2),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
	if err := setType(f, value, schema.Field{Type: field.Type, Message: field.Message}); err != nil {
		return nil, err
	}

	return &descriptorpb.DescriptorProto{
		Name:    proto.String(naming.MapEntryName(field.Name)),
		Field:   []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}, nil
}

func setType(f *schema.File, fp *descriptorpb.FieldDescriptorProto, field schema.Field) error {
	if field.Message != schema.NoMessage {
		fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fp.TypeName = proto.String("." + f.FullName(field.Message))
		return nil
	}
	if t, ok := scalarTypes[field.Type]; ok {
		fp.Type = t.Enum()
		return nil
	}
	if schema.ImportFor(field.Type) != "" {
		fp.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fp.TypeName = proto.String("." + field.Type)
		return nil
	}
	return fmt.Errorf("unsupported field type %q", field.Type)
}
