package controllers

import (
	"fmt"

	"github.com/fatih/color"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// StatusController handles the "status" subcommand.
type StatusController struct {
	command commands.Status
}

// NewStatusController creates a new StatusController.
func NewStatusController(command commands.Status) *StatusController {
	return &StatusController{command: command}
}

// GetBind returns the Cobra command metadata for "status".
func (it *StatusController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "status",
		Short: "Show versions, dependencies and pending changes of every project",
		Long: `Show, for every selected project, its current version, the version the
configured bump would release, its in-set dependencies and dependents, and the
uncommitted files under its folder.`,
		Args: cobra.NoArgs,
	}
}

// AddFlags adds the status flags to the given Cobra command.
func (it *StatusController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	cmd.Flags().String("bump", "", "Increment used to compute the next version (default: release.bump)")
}

// Execute prints the status of the selected projects.
func (it *StatusController) Execute(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	setIfChanged(cmd, overrides, "bump", "release.bump", cmd.Flags().GetString)

	settings, err := loadSettings(cmd, overrides)
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		return err
	}

	statuses, err := it.command.Execute(cmd.Context(), settings, selectionFromFlags(cmd))
	if err != nil {
		logger.Errorf("Status failed: %v", err)
		return err
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	for _, st := range statuses {
		_, _ = bold.Fprintf(out, "%s", st.Project.Name)
		fmt.Fprintf(out, " %s -> %s (%s)\n", st.Project.Version, st.NextVersion, st.Project.Folder)
		if len(st.Dependencies) > 0 {
			fmt.Fprintf(out, "  depends on: %v\n", st.Dependencies)
		}
		if len(st.Dependents) > 0 {
			fmt.Fprintf(out, "  used by:    %v\n", st.Dependents)
		}
		switch {
		case !st.Tracked:
			fmt.Fprintln(out, "  not tracked by git")
		case len(st.Changed) > 0:
			_, _ = yellow.Fprintf(out, "  %d uncommitted file(s)\n", len(st.Changed))
			for _, f := range st.Changed {
				fmt.Fprintf(out, "    %s\n", f)
			}
		}
	}
	return nil
}
