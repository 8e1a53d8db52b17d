/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: synthesize.go
Description: Message synthesizer. Builds the descriptor table bottom-up from aggregated field
sets, deduplicating structurally identical messages within one generation call and assigning
every new nested message to the scope of the first message that references it.
*/

package inference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/schema"
	"github.com/sirupsen/logrus"
)

// unowned marks a committed message that no parent has claimed yet
const unowned = -2

// buildContext carries all mutable state of one generation call
type buildContext struct {
	opts     Options
	file     *schema.File
	warnings *warnings
	cache    map[string]int // message name + structural signature -> index
	logger   logrus.FieldLogger
}

func newBuildContext(opts Options, logger logrus.FieldLogger) *buildContext {
	return &buildContext{
		opts:     opts,
		file:     schema.NewFile(opts.PackageName),
		warnings: newWarnings(),
		cache:    make(map[string]int),
		logger:   logger,
	}
}

// classify wraps Classify and records the double widening warning
func (c *buildContext) classify(v any) Signature {
	sig := Classify(v)
	if sig == SigDouble {
		c.warnings.add(warnDoubleWidening)
	}
	return sig
}

func (c *buildContext) signatures(values []any) sigSet {
	set := make(sigSet)
	for _, v := range values {
		set[c.classify(v)] = struct{}{}
	}
	return set
}

// rootPath is the prefix used for field paths in warnings
func (c *buildContext) rootPath() string {
	if c.opts.PackageName == "" {
		return c.opts.MessageName
	}
	return c.opts.PackageName + "." + c.opts.MessageName
}

// buildMessage synthesizes a message from a field set and returns its index.
// Cacheable messages with the same name and structural signature as an
// earlier one resolve to that earlier descriptor.
func (c *buildContext) buildMessage(name, path string, fs *fieldSet, depth int, cacheable bool) (int, error) {
	if depth > c.opts.MaxDepth {
		return 0, &Error{
			Kind:    KindNestingTooDeep,
			Message: fmt.Sprintf("nesting exceeds %d levels at %s", c.opts.MaxDepth, path),
		}
	}

	msg := schema.Message{Name: name, Parent: unowned}
	for i, obs := range fs.order {
		ft, err := c.unify(name, path+"."+obs.name, obs, depth)
		if err != nil {
			return 0, err
		}
		if len(obs.aliases) > 0 {
			c.warnings.add("keys %s at %s merge into field %s", quoteKeys(obs.key, obs.aliases), path, obs.name)
		}

		field := schema.Field{
			Name:     obs.name,
			Key:      obs.key,
			Type:     ft.typeName,
			Message:  ft.message,
			Repeated: ft.repeated,
			MapKey:   ft.mapKey,
			Number:   i + 1,
		}
		if c.opts.JSONNames && obs.key != "" && obs.key != naming.JSONName(obs.name) && !extensionStyle(obs.key) {
			field.JSONName = obs.key
		}
		if imp := schema.ImportFor(ft.typeName); imp != "" {
			c.file.Imports.Add(imp)
		}
		msg.Fields = append(msg.Fields, field)
	}
	msg.Signature = structuralSignature(msg.Fields)

	key := name + "|" + msg.Signature
	if cacheable {
		if idx, ok := c.cache[key]; ok {
			c.logger.WithFields(logrus.Fields{
				"message": name,
				"path":    path,
				"reused":  c.file.FullName(idx),
			}).Debug("Message deduplicated")
			return idx, nil
		}
	}

	idx := c.file.Add(msg)
	c.adopt(idx)
	if cacheable {
		c.cache[key] = idx
	}

	c.logger.WithFields(logrus.Fields{
		"message": name,
		"path":    path,
		"fields":  len(msg.Fields),
		"depth":   depth,
	}).Debug("Message synthesized")

	return idx, nil
}

// adopt claims every unowned message referenced by parent's fields as a
// nested message of parent, renaming on a clash with a sibling message,
// a field or an implicit map entry of parent.
func (c *buildContext) adopt(parent int) {
	taken := make(map[string]bool)
	for _, f := range c.file.Messages[parent].Fields {
		taken[f.Name] = true
		if f.IsMap() {
			taken[naming.MapEntryName(f.Name)] = true
		}
	}

	for _, f := range c.file.Messages[parent].Fields {
		child := f.Message
		if child == schema.NoMessage || c.file.Messages[child].Parent != unowned {
			continue
		}

		name := c.file.Messages[child].Name
		if taken[name] {
			unique := name
			for n := 2; taken[unique]; n++ {
				unique = name + strconv.Itoa(n)
			}
			c.rename(child, unique)
			name = unique
		}
		taken[name] = true

		c.file.Messages[child].Parent = parent
		c.file.Messages[parent].Nested = append(c.file.Messages[parent].Nested, child)
	}
}

// rename changes a committed message's name and moves its cache entry
func (c *buildContext) rename(idx int, name string) {
	msg := &c.file.Messages[idx]
	oldKey := msg.Name + "|" + msg.Signature
	if cached, ok := c.cache[oldKey]; ok && cached == idx {
		delete(c.cache, oldKey)
	}
	msg.Name = name
	c.cache[name+"|"+msg.Signature] = idx
}

// quoteKeys lists the first key and its aliases as quoted JSON keys
func quoteKeys(first string, aliases []string) string {
	quoted := make([]string, 0, len(aliases)+1)
	quoted = append(quoted, strconv.Quote(first))
	for _, a := range aliases {
		quoted = append(quoted, strconv.Quote(a))
	}
	return strings.Join(quoted, ", ")
}

// extensionStyle reports keys like "[x]", which protoc reserves for extension JSON names
func extensionStyle(key string) bool {
	return len(key) >= 2 && strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]")
}

// messageName turns a PascalCase candidate into a legal message identifier
func messageName(candidate string) string {
	if candidate == "" {
		return "Unnamed"
	}
	if candidate[0] >= '0' && candidate[0] <= '9' {
		return "_" + candidate
	}
	return candidate
}

// structuralSignature encodes the ordered field list. Message types are
// encoded by descriptor index, so equal signatures imply equal nested shapes.
func structuralSignature(fields []schema.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		label := "s"
		if f.Repeated {
			label = "r"
		}
		typ := f.Type
		if f.Message != schema.NoMessage {
			typ = "#" + strconv.Itoa(f.Message)
		}
		if f.IsMap() {
			typ = "map<" + f.MapKey + "," + typ + ">"
		}
		part := f.Name + ":" + label + ":" + typ
		if f.JSONName != "" {
			part += ":" + f.JSONName
		}
		parts[i] = part
	}
	return strings.Join(parts, ",")
}
