/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference_test.go
Description: End-to-end tests for schema generation. Covers the widening, null, mixed-type,
array-of-objects, empty-array and root-scalar rules, determinism, deduplication, naming and
error handling, and compiles every generated file with a real protobuf parser.
*/

package inference

import (
	"errors"
	"strings"
	"testing"

	"github.com/kleascm/protoinfer/pkg/schema"
	"github.com/kleascm/protoinfer/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generate runs Generate and checks that the output compiles
func generate(t *testing.T, raw string, opts Options) *Result {
	t.Helper()
	res, err := Generate(raw, opts)
	require.NoError(t, err)
	require.NotNil(t, res)

	_, err = verify.Check("generated.proto", res.ProtoText)
	require.NoError(t, err, "generated proto:\n%s", res.ProtoText)
	return res
}

func TestGenerateArrayOfObjects(t *testing.T) {
	res := generate(t, `{"users":[{"id":1},{"id":2,"name":"x"}]}`, Options{})

	want := `syntax = "proto3";

message RootMessage {
  repeated User users = 1;

  message User {
    int64 id = 1;
    string name = 2;
  }
}
`
	assert.Equal(t, want, res.ProtoText)
	assert.Empty(t, res.Warnings)
}

func TestGenerateEmptyArray(t *testing.T) {
	res := generate(t, `{"tags":[]}`, Options{})

	want := `syntax = "proto3";

import "google/protobuf/any.proto";

message RootMessage {
  repeated google.protobuf.Any tags = 1;
}
`
	assert.Equal(t, want, res.ProtoText)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "RootMessage.tags")
}

func TestGenerateRootScalar(t *testing.T) {
	res := generate(t, `42`, Options{MessageName: "Root"})

	assert.Equal(t, "syntax = \"proto3\";\n\nmessage Root {\n  int64 value = 1;\n}\n", res.ProtoText)
	assert.Empty(t, res.Warnings)
}

func TestGenerateRootVariants(t *testing.T) {
	cases := []struct {
		name  string
		input string
		line  string
	}{
		{"string", `"hello"`, "string value = 1;"},
		{"bool", `true`, "bool value = 1;"},
		{"null", `null`, "google.protobuf.Value value = 1;"},
		{"empty array", `[]`, "repeated google.protobuf.Any value = 1;"},
		{"scalar array", `[1,2,3]`, "repeated int64 value = 1;"},
		{"mixed array", `[1,"a"]`, "repeated google.protobuf.Value value = 1;"},
		{"array of arrays", `[[1,2],[3,4]]`, "repeated ValueRow value = 1;"},
		{"multiple scalars widen", "1\n2.5", "double value = 1;"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := generate(t, tc.input, Options{})
			assert.Contains(t, res.ProtoText, tc.line)
		})
	}
}

func TestGenerateWidening(t *testing.T) {
	res := generate(t, "{\"score\":1,\"ratio\":0.5}\n{\"score\":2.5,\"ratio\":1}", Options{})

	assert.Contains(t, res.ProtoText, "double score = 1;")
	assert.Contains(t, res.ProtoText, "double ratio = 2;")
	assert.NotContains(t, res.ProtoText, "int64")
	assert.NotContains(t, res.ProtoText, "google.protobuf.Value")
	assert.Equal(t, []string{warnDoubleWidening}, res.Warnings)
}

func TestGenerateNullAlone(t *testing.T) {
	res := generate(t, "{\"a\":null,\"b\":1}\n{\"a\":null}", Options{})

	assert.Contains(t, res.ProtoText, "import \"google/protobuf/struct.proto\";")
	assert.Contains(t, res.ProtoText, "google.protobuf.Value a = 1;")
	assert.Contains(t, res.ProtoText, "int64 b = 2;")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "RootMessage.a")
}

func TestGenerateNullWithConcreteType(t *testing.T) {
	res := generate(t, "{\"a\":null,\"b\":[1,null,2]}\n{\"a\":\"x\"}", Options{})

	assert.Contains(t, res.ProtoText, "string a = 1;")
	assert.Contains(t, res.ProtoText, "repeated int64 b = 2;")
	assert.Empty(t, res.Warnings)
}

func TestGenerateMixedTypes(t *testing.T) {
	res := generate(t, "{\"id\":1}\n{\"id\":\"x\"}", Options{})

	assert.Contains(t, res.ProtoText, "google.protobuf.Value id = 1;")
	assert.True(t, res.File.Imports.Has(schema.ImportStruct))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "RootMessage.id")
	assert.Contains(t, res.Warnings[0], "int, string")
}

func TestGenerateListAndScalarIsAmbiguous(t *testing.T) {
	res := generate(t, "{\"a\":[1]}\n{\"a\":2}", Options{})

	assert.Contains(t, res.ProtoText, "repeated google.protobuf.Value a = 1;")
	require.Len(t, res.Warnings, 1)
}

func TestGenerateWarningsOnePerPath(t *testing.T) {
	res := generate(t, "{\"a\":null,\"b\":null,\"c\":1}\n{\"a\":null,\"b\":null,\"c\":\"x\"}", Options{PackageName: "acme.v1"})

	require.Len(t, res.Warnings, 3)
	assert.Contains(t, res.Warnings[0], "acme.v1.RootMessage.a")
	assert.Contains(t, res.Warnings[1], "acme.v1.RootMessage.b")
	assert.Contains(t, res.Warnings[2], "acme.v1.RootMessage.c")
}

func TestGenerateIdempotent(t *testing.T) {
	input := `{"users":[{"id":1,"tags":["a"]},{"id":2.5,"meta":{"k":null}}],"count":3}`
	opts := Options{PackageName: "demo"}

	first := generate(t, input, opts)
	second := generate(t, input, opts)

	assert.Equal(t, first.ProtoText, second.ProtoText)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestGenerateKeyOrderOnlyShiftsNumbers(t *testing.T) {
	ab := generate(t, `{"a":1,"b":"x","c":{"d":true}}`, Options{})
	ba := generate(t, `{"c":{"d":true},"b":"x","a":1}`, Options{})

	assert.Contains(t, ab.ProtoText, "int64 a = 1;")
	assert.Contains(t, ab.ProtoText, "string b = 2;")
	assert.Contains(t, ab.ProtoText, "C c = 3;")

	assert.Contains(t, ba.ProtoText, "C c = 1;")
	assert.Contains(t, ba.ProtoText, "string b = 2;")
	assert.Contains(t, ba.ProtoText, "int64 a = 3;")

	root := func(r *Result) map[string]string {
		types := make(map[string]string)
		for _, f := range r.File.Messages[r.File.Roots[0]].Fields {
			types[f.Name] = r.File.TypeRef(r.File.Roots[0], f)
		}
		return types
	}
	assert.Equal(t, root(ab), root(ba))
}

func TestGenerateFieldNumbersFollowDiscovery(t *testing.T) {
	res := generate(t, "{\"b\":1}\n{\"a\":2,\"b\":3}\n{\"c\":4}", Options{})

	assert.Contains(t, res.ProtoText, "int64 b = 1;\n  int64 a = 2;\n  int64 c = 3;")
}

func TestGenerateInvalidJSON(t *testing.T) {
	res, err := Generate(`{"a": [1, 2`, Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestGenerateEmptyInput(t *testing.T) {
	_, err := Generate("  \n ", Options{})
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestGenerateRequireObjectRoot(t *testing.T) {
	_, err := Generate(`42`, Options{RequireObjectRoot: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedRootType))

	res, err := Generate(`[{"a":1}]`, Options{RequireObjectRoot: true})
	require.NoError(t, err)
	assert.Contains(t, res.ProtoText, "int64 a = 1;")
}

func TestGenerateMaxDepth(t *testing.T) {
	_, err := Generate(`{"a":{"b":{"c":{"d":1}}}}`, Options{MaxDepth: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNestingTooDeep))

	_, err = Generate(`{"a":{"b":{"c":{"d":1}}}}`, Options{MaxDepth: 3})
	assert.NoError(t, err)
}

func TestGenerateDeeplyNested(t *testing.T) {
	res := generate(t, `{"a":{"b":{"c":{"d":1}}}}`, Options{MessageName: "TestMsg"})

	want := `syntax = "proto3";

message TestMsg {
  A a = 1;

  message A {
    B b = 1;

    message B {
      C c = 1;

      message C {
        int64 d = 1;
      }
    }
  }
}
`
	assert.Equal(t, want, res.ProtoText)
}

func TestGenerateSameShapeDifferentNamesStaySeparate(t *testing.T) {
	res := generate(t, `{"home":{"street":"a","zip":1},"work":{"street":"b","zip":2}}`, Options{})

	assert.Contains(t, res.ProtoText, "Home home = 1;")
	assert.Contains(t, res.ProtoText, "Work work = 2;")
	assert.Contains(t, res.ProtoText, "message Home {")
	assert.Contains(t, res.ProtoText, "message Work {")
}

func TestGenerateSameNameAndShapeShareDescriptor(t *testing.T) {
	res := generate(t, `{"user":{"id":1},"users":[{"id":2},{"id":3}]}`, Options{})

	assert.Contains(t, res.ProtoText, "User user = 1;")
	assert.Contains(t, res.ProtoText, "repeated User users = 2;")
	assert.Equal(t, 1, strings.Count(res.ProtoText, "message User {"))
}

func TestGenerateSharedDescriptorAcrossScopes(t *testing.T) {
	res := generate(t, `{"a":{"address":{"street":"x"}},"b":{"address":{"street":"y"}}}`, Options{})

	want := `syntax = "proto3";

message RootMessage {
  A a = 1;
  B b = 2;

  message A {
    Address address = 1;

    message Address {
      string street = 1;
    }
  }

  message B {
    .RootMessage.A.Address address = 1;
  }
}
`
	assert.Equal(t, want, res.ProtoText)
}

func TestGenerateNameClashGetsSuffix(t *testing.T) {
	res := generate(t, `{"user":{"id":1},"users":[{"name":"x"}]}`, Options{})

	assert.Contains(t, res.ProtoText, "User user = 1;")
	assert.Contains(t, res.ProtoText, "repeated User2 users = 2;")
	assert.Contains(t, res.ProtoText, "message User2 {")
}

func TestGenerateArraysOfArrays(t *testing.T) {
	res := generate(t, `{"matrix":[[1,2],[3,4,5]]}`, Options{})

	want := `syntax = "proto3";

message RootMessage {
  repeated MatrixRow matrix = 1;

  message MatrixRow {
    int64 _0 = 1;
    int64 _1 = 2;
    int64 _2 = 3;
  }
}
`
	assert.Equal(t, want, res.ProtoText)
}

func TestGenerateNestedArrayInsideObjects(t *testing.T) {
	res := generate(t, `{"items":[{"tags":["a","b"]},{"tags":[]},{"price":1.5}]}`, Options{})

	assert.Contains(t, res.ProtoText, "repeated Item items = 1;")
	assert.Contains(t, res.ProtoText, "repeated string tags = 1;")
	assert.Contains(t, res.ProtoText, "double price = 2;")
}

func TestGenerateSpecialKeys(t *testing.T) {
	res := generate(t, `{"123":"x","a-b":1,"c d":"y","userId":2,"user_id":3}`, Options{})

	assert.Contains(t, res.ProtoText, "string _123 = 1;")
	assert.Contains(t, res.ProtoText, "int64 a_b = 2;")
	assert.Contains(t, res.ProtoText, "string c_d = 3;")
	assert.Contains(t, res.ProtoText, "int64 user_id = 4;")
	assert.NotContains(t, res.ProtoText, "= 5;")
}

func TestGenerateKeysSharingJSONNameMerge(t *testing.T) {
	res := generate(t, `{"a1":1,"a_1":2,"b":true}`, Options{})

	assert.Contains(t, res.ProtoText, "int64 a1 = 1;")
	assert.Contains(t, res.ProtoText, "bool b = 2;")
	assert.NotContains(t, res.ProtoText, "a_1")
}

func TestGenerateNestedObject(t *testing.T) {
	res := generate(t, `{"root_message":{"a":1,"b":{"c":"x"}}}`, Options{})
	assert.Empty(t, res.Warnings)

	report, err := verify.Check("nested.proto", res.ProtoText)
	require.NoError(t, err)
	root, ok := report.Message("RootMessage")
	require.True(t, ok)
	field, ok := root.Field("root_message")
	require.True(t, ok)
	assert.Equal(t, "RootMessage.RootMessage", field.Type)

	inner, ok := report.Message("RootMessage.RootMessage")
	require.True(t, ok)
	a, ok := inner.Field("a")
	require.True(t, ok)
	assert.Equal(t, "int64", a.Type)
	b, ok := inner.Field("b")
	require.True(t, ok)
	assert.Equal(t, "RootMessage.RootMessage.B", b.Type)
}

func TestGenerateWarnsWhenKeysMerge(t *testing.T) {
	res := generate(t, `{"":1,"_":2,"$":3}`, Options{})

	assert.Equal(t, "syntax = \"proto3\";\n\nmessage RootMessage {\n  int64 unnamed = 1;\n}\n", res.ProtoText)
	assert.Equal(t, []string{`keys "", "_", "$" at RootMessage merge into field unnamed`}, res.Warnings)

	res = generate(t, "{\"a1\":1}\n{\"a_1\":2}\n{\"a1\":3}", Options{PackageName: "acme"})
	assert.Equal(t, []string{`keys "a1", "a_1" at acme.RootMessage merge into field a1`}, res.Warnings)

	res = generate(t, "{\"a\":1}\n{\"a\":2}", Options{})
	assert.Empty(t, res.Warnings)
}

func TestAggregateGoMaps(t *testing.T) {
	fs := aggregateObjects([]any{map[string]any{"b": Number("1"), "a": map[string]any{"x": true}}})
	require.Equal(t, 2, fs.len())
	assert.Equal(t, "a", fs.order[0].name)
	assert.Equal(t, "b", fs.order[1].name)

	nested := aggregateObjects(fs.order[0].values)
	require.Equal(t, 1, nested.len())
	assert.Equal(t, "x", nested.order[0].name)
}

func TestGenerateDigitKeyMessageDoesNotShadowField(t *testing.T) {
	res := generate(t, `{"2fa":{"enabled":true}}`, Options{})

	assert.Contains(t, res.ProtoText, "_2fa2 _2fa = 1;")
	assert.Contains(t, res.ProtoText, "message _2fa2 {")
}

func TestGenerateJSONNames(t *testing.T) {
	res := generate(t, `{"userId":1,"user_name":"x","ID":2}`, Options{JSONNames: true})

	assert.Contains(t, res.ProtoText, "int64 user_id = 1;")
	assert.Contains(t, res.ProtoText, `string user_name = 2 [json_name = "user_name"];`)
	assert.Contains(t, res.ProtoText, `int64 id = 3 [json_name = "ID"];`)

	res = generate(t, `{"[ext]":1}`, Options{JSONNames: true})
	assert.Contains(t, res.ProtoText, "int64 ext = 1;")
}

func TestGenerateEmptyObjects(t *testing.T) {
	res := generate(t, `{"meta":{},"rows":[{},{}]}`, Options{})

	assert.Contains(t, res.ProtoText, "Meta meta = 1;")
	assert.Contains(t, res.ProtoText, "repeated Row rows = 2;")
	assert.Contains(t, res.ProtoText, "message Meta {}")
	assert.Contains(t, res.ProtoText, "message Row {}")
}

func TestGenerateMessageNameNormalized(t *testing.T) {
	res := generate(t, `{"a":1}`, Options{MessageName: "my event"})
	assert.Contains(t, res.ProtoText, "message MyEvent {")

	res = generate(t, `{"a":1}`, Options{MessageName: "$$"})
	assert.Contains(t, res.ProtoText, "message RootMessage {")
}

func TestGeneratorReentrant(t *testing.T) {
	gen := NewGenerator(Options{PackageName: "x"}, nil)
	assert.Equal(t, DefaultMessageName, gen.Options().MessageName)
	assert.Equal(t, DefaultMaxDepth, gen.Options().MaxDepth)

	first, err := gen.Generate(`{"a":null}`)
	require.NoError(t, err)
	second, err := gen.Generate(`{"b":1}`)
	require.NoError(t, err)

	assert.Len(t, first.Warnings, 1)
	assert.Empty(t, second.Warnings)
	assert.False(t, second.File.Imports.Has(schema.ImportStruct))
}

func TestGenerateCompiledTypes(t *testing.T) {
	res := generate(t, `{"users":[{"id":1,"score":2.5,"active":true,"meta":null}],"tags":[]}`, Options{PackageName: "acme"})

	report, err := verify.Check("acme.proto", res.ProtoText)
	require.NoError(t, err)
	assert.Equal(t, "acme", report.Package)
	assert.ElementsMatch(t, []string{schema.ImportAny, schema.ImportStruct}, report.Imports)

	root, ok := report.Message("acme.RootMessage")
	require.True(t, ok)
	users, ok := root.Field("users")
	require.True(t, ok)
	assert.True(t, users.Repeated)
	assert.Equal(t, "acme.RootMessage.User", users.Type)

	user, ok := report.Message("acme.RootMessage.User")
	require.True(t, ok)
	for name, typ := range map[string]string{"id": "int64", "score": "double", "active": "bool", "meta": "google.protobuf.Value"} {
		f, ok := user.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, f.Type, name)
	}
}
