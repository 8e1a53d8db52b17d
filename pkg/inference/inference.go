/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Main entry point for proto3 schema inference. Parses sample JSON documents,
aggregates and unifies their fields, synthesizes the message tree and renders .proto text
together with ambiguity warnings. Each call owns all of its state.
*/

package inference

import (
	"fmt"
	"io"
	"strings"

	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/render"
	"github.com/kleascm/protoinfer/pkg/schema"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMessageName names the root message when none is configured
	DefaultMessageName = "RootMessage"
	// DefaultMaxDepth bounds message nesting driven by the input
	DefaultMaxDepth = 256

	rootValueField = "value"
)

// Options configures a generation call
type Options struct {
	PackageName string `json:"package" yaml:"package" mapstructure:"package"`
	MessageName string `json:"message" yaml:"message" mapstructure:"message"`

	JSONNames         bool                `json:"json_names" yaml:"json_names" mapstructure:"json_names"`                // Emit json_name when the key differs from the default
	DetectMaps        bool                `json:"detect_maps" yaml:"detect_maps" mapstructure:"detect_maps"`             // Heuristic map<string, V> detection
	MapHints          map[string][]string `json:"map_hints" yaml:"map_hints" mapstructure:"map_hints"`                   // Message name -> fields rendered as maps
	RequireObjectRoot bool                `json:"object_root" yaml:"object_root" mapstructure:"object_root"`             // Reject scalar, null and array documents
	MaxDepth          int                 `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
}

// withDefaults fills unset options and legalizes the root message name
func (o Options) withDefaults() Options {
	o.PackageName = strings.TrimSpace(o.PackageName)

	name := strings.TrimSpace(o.MessageName)
	if !naming.IsIdentifier(name) {
		name = naming.ToPascalCase(name)
	}
	if !naming.IsIdentifier(name) {
		name = DefaultMessageName
	}
	o.MessageName = name

	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Result is a successfully inferred schema
type Result struct {
	ProtoText string
	Warnings  []string
	File      *schema.File
}

// Generator infers proto3 schemas with a fixed set of options
type Generator struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewGenerator creates a generator; a nil logger discards pipeline logs
func NewGenerator(opts Options, logger logrus.FieldLogger) *Generator {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Generator{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective options after defaults were applied
func (g *Generator) Options() Options {
	return g.opts
}

// Generate infers a schema from the raw input
func Generate(raw string, opts Options) (*Result, error) {
	return NewGenerator(opts, nil).Generate(raw)
}

// Generate infers a schema from the raw input.
// Failures are *Error values; ambiguity never fails, it only warns.
func (g *Generator) Generate(raw string) (*Result, error) {
	docs, err := ParseDocuments(raw)
	if err != nil {
		g.logger.WithError(err).Debug("Document parsing failed")
		return nil, err
	}

	if g.opts.RequireObjectRoot {
		for i, d := range docs {
			if _, ok := d.(*Object); !ok {
				return nil, newError(KindUnsupportedRootType,
					fmt.Sprintf("document %d is %s, expected an object", i+1, Classify(d)))
			}
		}
	}

	if !allObjects(docs) {
		docs = wrapValues(docs)
	}

	ctx := newBuildContext(g.opts, g.logger)
	root, err := ctx.buildMessage(g.opts.MessageName, ctx.rootPath(), aggregateObjects(docs), 0, false)
	if err != nil {
		return nil, err
	}
	ctx.file.Messages[root].Parent = -1
	ctx.file.Roots = []int{root}

	result := &Result{
		ProtoText: render.Render(ctx.file),
		Warnings:  ctx.warnings.items(),
		File:      ctx.file,
	}

	g.logger.WithFields(logrus.Fields{
		"documents": len(docs),
		"messages":  len(ctx.file.Messages),
		"imports":   len(ctx.file.Imports),
		"warnings":  len(result.Warnings),
	}).Debug("Schema generated")

	return result, nil
}
