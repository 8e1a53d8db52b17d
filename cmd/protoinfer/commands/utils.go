/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the protoinfer commands. Provides configuration loading,
logging setup, input reading and the inference run shared by generate and inspect.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/kleascm/protoinfer/pkg/inference"
	"github.com/kleascm/protoinfer/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("PROTOINFER")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system; console output goes to the command's stderr
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	if level := viper.GetString("log_level"); level != "" {
		cfg.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		cfg.Format = logging.LogFormat(format)
	}
	cfg.OutputDir = viper.GetString("log_dir")
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		cfg.MaxFiles = maxFiles
	}

	logger, err := logging.NewLoggerTo(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// optionsFromViper collects inference options from flags, environment and config file
func optionsFromViper() inference.Options {
	return inference.Options{
		PackageName:       viper.GetString("package"),
		MessageName:       viper.GetString("message"),
		JSONNames:         viper.GetBool("json_names"),
		DetectMaps:        viper.GetBool("detect_maps"),
		MapHints:          viper.GetStringMapStringSlice("map_hints"),
		RequireObjectRoot: viper.GetBool("object_root"),
		MaxDepth:          viper.GetInt("max_depth"),
	}
}

// readInput reads sample JSON from the named file, or stdin for "-" or no argument
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), args[0], nil
}

// run is one inference invocation of a command
type run struct {
	id     string
	logger *logging.Logger
	gen    *inference.Generator
	result *inference.Result
}

// startRun loads configuration, reads input and infers the schema.
// The caller closes run.logger when run is non-nil.
func startRun(cmd *cobra.Command, args []string) (*run, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd)
	if err != nil {
		return nil, err
	}

	r := &run{id: uuid.New().String(), logger: logger}

	raw, source, err := readInput(cmd, args)
	if err != nil {
		return r, err
	}

	opts := optionsFromViper()
	r.gen = inference.NewGenerator(opts, logger.GetLogger().WithField("run_id", r.id))
	effective := r.gen.Options()
	logger.LogRun(r.id, source, map[string]interface{}{
		"package":     effective.PackageName,
		"message":     effective.MessageName,
		"detect_maps": effective.DetectMaps,
		"map_hints":   len(effective.MapHints),
	})

	r.result, err = r.gen.Generate(raw)
	if err != nil {
		return r, fmt.Errorf("schema inference failed: %w", err)
	}
	logger.LogWarnings(r.id, r.result.Warnings)

	return r, nil
}
