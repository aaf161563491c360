package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// PublishController handles the "publish" subcommand.
type PublishController struct {
	command commands.Publish
}

// NewPublishController creates a new PublishController.
func NewPublishController(command commands.Publish) *PublishController {
	return &PublishController{command: command}
}

// GetBind returns the Cobra command metadata for "publish".
func (it *PublishController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "publish",
		Short: "Publish the current version of the selected projects",
		Long: `Publish the current version of every selected public project, in dependency
order, without bumping, committing or pushing. Versions the registry already
holds are skipped, so this finishes a release that failed while publishing.`,
		Args: cobra.NoArgs,
	}
}

// AddFlags adds the publish flags to the given Cobra command.
func (it *PublishController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	addRegistryFlags(cmd)
}

// Execute publishes the selected projects.
func (it *PublishController) Execute(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	addRegistryOverrides(cmd, overrides)

	settings, err := loadSettings(cmd, overrides)
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		return err
	}

	opts := commands.PublishOptions{Selection: selectionFromFlags(cmd)}
	opts.DistTag, _ = cmd.Flags().GetString("dist-tag")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	plan, err := it.command.Execute(cmd.Context(), settings, opts)
	if plan != nil {
		printPlanSummary(cmd, plan, opts.DryRun)
	}
	if err != nil {
		logger.Errorf("Publish failed: %v", err)
		return err
	}
	return nil
}
