/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree for protoinfer. Declares the persistent logging and inference flags,
binds them to viper keys and registers the generate, inspect, check and version commands.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the protoinfer release version
var Version = "1.0.0"

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "protoinfer",
		Short: "protoinfer - infer proto3 schemas from sample JSON",
		Long: `protoinfer reads one or more sample JSON documents and generates a proto3 schema
that can represent all of them. Ambiguous or mixed samples fall back to well-known types
and are reported as warnings instead of failing the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path")
	flags.String("log-level", "warn", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "custom", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Also write logs to timestamped files in this directory")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")

	flags.String("package", "", "Proto package name")
	flags.String("message", "", "Root message name (default RootMessage)")
	flags.Bool("json-names", false, "Emit json_name options when a key differs from the default JSON name")
	flags.Bool("detect-maps", false, "Render objects keyed by data (ids, UUIDs, free text) as map<string, V>")
	flags.Bool("object-root", false, "Reject documents that are not JSON objects")
	flags.Int("max-depth", 0, "Maximum message nesting depth (0 = default)")

	bindings := map[string]string{
		"config":        "config",
		"log_level":     "log-level",
		"log_format":    "log-format",
		"log_dir":       "log-dir",
		"log_max_files": "log-max-files",
		"package":       "package",
		"message":       "message",
		"json_names":    "json-names",
		"detect_maps":   "detect-maps",
		"object_root":   "object-root",
		"max_depth":     "max-depth",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	generateCmd := &cobra.Command{
		Use:   "generate [file|-]",
		Short: "Generate a .proto schema from sample JSON",
		Long: `Read sample JSON from a file, or from stdin when the argument is "-" or missing, and
print the inferred proto3 schema. Input may be a single value, an array of objects, or several
documents separated by whitespace, blank lines or "---" lines.`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunGenerate,
	}
	generateCmd.Flags().String("out", "", "Write the schema to this file instead of stdout")
	generateCmd.Flags().Bool("verify", false, "Compile the generated schema before writing it")
	generateCmd.Flags().String("descriptor-out", "", "Also write a binary FileDescriptorSet to this file")
	viper.BindPFlag("out", generateCmd.Flags().Lookup("out"))
	viper.BindPFlag("verify", generateCmd.Flags().Lookup("verify"))
	viper.BindPFlag("descriptor_out", generateCmd.Flags().Lookup("descriptor-out"))
	rootCmd.AddCommand(generateCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Print the inferred descriptor tree as YAML",
		Long: `Run inference like generate but print the message table, resolved field types and
warnings as YAML. Useful for reviewing how samples were unified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunInspect,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "check <file.proto>",
		Short: "Compile a .proto file and summarize its messages",
		Long: `Parse a proto file with well-known imports available and list every message with its
fields. Exits non-zero when the file does not compile, which makes it usable in CI.`,
		Args: cobra.ExactArgs(1),
		RunE: RunCheck,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the protoinfer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "protoinfer %s\n", Version)
		},
	})

	return rootCmd
}
