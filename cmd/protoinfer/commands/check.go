/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: The check command. Compiles an existing .proto file and prints a summary of its
messages and fields, failing when the file does not compile.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kleascm/protoinfer/pkg/verify"
	"github.com/spf13/cobra"
)

// RunCheck compiles a proto file and summarizes it
func RunCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read proto file: %w", err)
	}

	report, err := verify.Check(filepath.Base(args[0]), string(source))
	if err != nil {
		return err
	}

	names := make([]string, 0, len(report.Messages))
	for name := range report.Messages {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ %s compiles (%d messages)\n", args[0], len(names))
	for _, name := range names {
		msg := report.Messages[name]
		fmt.Fprintf(out, "message %s\n", name)
		for _, f := range msg.Fields {
			var label string
			switch {
			case f.Map:
				label = "map<" + f.MapKey + ", " + f.Type + ">"
			case f.Repeated:
				label = "repeated " + f.Type
			default:
				label = f.Type
			}
			fmt.Fprintf(out, "  %d %s %s\n", f.Number, f.Name, label)
		}
	}

	logger.GetLogger().WithField("messages", len(names)).Info("Proto file checked")
	return nil
}
