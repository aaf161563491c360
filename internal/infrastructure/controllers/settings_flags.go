package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// addSelectionFlags adds the project selection flags shared by every project command.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("projects", nil, "Only include these projects (names or glob patterns)")
	cmd.Flags().StringSlice("ignore", nil, "Exclude these projects (names or glob patterns)")
	cmd.Flags().Bool("include-dependencies", false, "Also include the dependencies of selected projects")
}

// selectionFromFlags reads the selection flags added by addSelectionFlags.
func selectionFromFlags(cmd *cobra.Command) entities.Selection {
	projects, _ := cmd.Flags().GetStringSlice("projects")
	ignore, _ := cmd.Flags().GetStringSlice("ignore")
	includeDeps, _ := cmd.Flags().GetBool("include-dependencies")
	return entities.Selection{Projects: projects, Ignore: ignore, IncludeDependencies: includeDeps}
}

// loadSettings builds the settings from the config file, the environment and the global flags.
// Without --config the standard locations under the root are searched; no file is not an error.
func loadSettings(cmd *cobra.Command, overrides map[string]any) (*entities.Settings, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if overrides == nil {
		overrides = make(map[string]any)
	}

	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = "."
	}
	if cmd.Flags().Changed("root") {
		overrides["root"] = root
	}
	if cmd.Flags().Changed("concurrency") {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		overrides["concurrency"] = concurrency
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		found, err := entities.FindConfigFile(root)
		if err != nil {
			logger.Debugf("No config file found under %s, using defaults", root)
		} else {
			configPath = found
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	return entities.NewSettings(configPath, overrides)
}

// setIfChanged copies a flag value into overrides under key when the user set it.
func setIfChanged[T any](cmd *cobra.Command, overrides map[string]any, flag, key string, get func(string) (T, error)) {
	if !cmd.Flags().Changed(flag) {
		return
	}
	if value, err := get(flag); err == nil {
		overrides[key] = value
	}
}

// AddGlobalFlags adds the persistent flags understood by every subcommand.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect under the root)")
	cmd.PersistentFlags().String("root", ".",
		"Monorepo root directory")
	cmd.PersistentFlags().IntP("concurrency", "j", 0,
		"Maximum number of projects processed at once (default: number of CPUs)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Show what would be done without making changes")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
}
