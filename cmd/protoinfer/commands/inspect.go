/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inspect.go
Description: The inspect command. Prints the inferred message table with resolved field types
and the run's warnings as YAML.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/protoinfer/pkg/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inspectField struct {
	Number   int    `yaml:"number"`
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Type     string `yaml:"type"`
	Label    string `yaml:"label,omitempty"` // repeated or map
	JSONName string `yaml:"json_name,omitempty"`
}

type inspectMessage struct {
	FullName string         `yaml:"full_name"`
	Fields   []inspectField `yaml:"fields"`
}

type inspectReport struct {
	Package  string           `yaml:"package,omitempty"`
	Imports  schema.ImportSet `yaml:"imports"`
	Messages []inspectMessage `yaml:"messages"`
	Warnings []string         `yaml:"warnings,omitempty"`
}

// RunInspect infers a schema and prints its descriptor table as YAML
func RunInspect(cmd *cobra.Command, args []string) error {
	r, err := startRun(cmd, args)
	if r != nil {
		defer r.logger.Close()
	}
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(buildInspectReport(r.result.File, r.result.Warnings))
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// buildInspectReport lists messages depth-first from the roots, parents before children
func buildInspectReport(f *schema.File, warnings []string) inspectReport {
	report := inspectReport{
		Package:  f.Package,
		Imports:  f.Imports,
		Warnings: warnings,
	}

	var walk func(idx int)
	walk = func(idx int) {
		msg := f.Messages[idx]
		im := inspectMessage{FullName: f.FullName(idx), Fields: []inspectField{}}
		for _, field := range msg.Fields {
			entry := inspectField{
				Number:   field.Number,
				Name:     field.Name,
				Key:      field.Key,
				Type:     field.Type,
				JSONName: field.JSONName,
			}
			if field.Message != schema.NoMessage {
				entry.Type = f.FullName(field.Message)
			}
			switch {
			case field.IsMap():
				entry.Label = "map"
			case field.Repeated:
				entry.Label = "repeated"
			}
			im.Fields = append(im.Fields, entry)
		}
		report.Messages = append(report.Messages, im)

		for _, nested := range msg.Nested {
			walk(nested)
		}
	}
	for _, root := range f.Roots {
		walk(root)
	}
	return report
}
