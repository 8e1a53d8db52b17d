/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: The generate command. Infers a proto3 schema from sample JSON, optionally compiles
it, and writes the .proto text and a binary FileDescriptorSet.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/kleascm/protoinfer/pkg/descriptor"
	"github.com/kleascm/protoinfer/pkg/naming"
	"github.com/kleascm/protoinfer/pkg/verify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunGenerate infers a schema and writes it to stdout or --out
func RunGenerate(cmd *cobra.Command, args []string) error {
	r, err := startRun(cmd, args)
	if r != nil {
		defer r.logger.Close()
	}
	if err != nil {
		return err
	}

	log := r.logger.GetLogger()
	if log.IsLevelEnabled(logrus.DebugLevel) {
		log.WithField("run_id", r.id).Debug("Descriptor table\n" + spew.Sdump(r.result.File))
	}

	out := viper.GetString("out")
	fileName := protoFileName(out, r.gen.Options().MessageName)

	if viper.GetBool("verify") {
		if _, err := verify.Check(fileName, r.result.ProtoText); err != nil {
			return err
		}
		log.WithField("run_id", r.id).Info("Generated schema compiles")
	}

	if descOut := viper.GetString("descriptor_out"); descOut != "" {
		data, err := descriptor.MarshalSet(r.result.File, fileName)
		if err != nil {
			return fmt.Errorf("failed to build descriptor set: %w", err)
		}
		if err := os.WriteFile(descOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write descriptor set: %w", err)
		}
	}

	if out == "" {
		fmt.Fprint(cmd.OutOrStdout(), r.result.ProtoText)
		out = "stdout"
	} else if err := os.WriteFile(out, []byte(r.result.ProtoText), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	r.logger.LogResult(r.id, len(r.result.File.Messages), len(r.result.Warnings), out)
	return nil
}

// protoFileName names the generated file in descriptors and compiler diagnostics
func protoFileName(out, message string) string {
	if out != "" {
		return filepath.Base(out)
	}
	return naming.ToSnakeCase(message) + ".proto"
}
