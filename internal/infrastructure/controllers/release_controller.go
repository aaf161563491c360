package controllers

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// ReleaseController handles the "release" subcommand.
type ReleaseController struct {
	command commands.Release
}

// NewReleaseController creates a new ReleaseController.
func NewReleaseController(command commands.Release) *ReleaseController {
	return &ReleaseController{command: command}
}

// GetBind returns the Cobra command metadata for "release".
func (it *ReleaseController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "release [major|minor|patch|premajor|preminor|prepatch|prerelease|<version>]",
		Short: "Version, tag and publish the selected projects",
		Long: `Release the selected projects in dependency order: check preconditions,
build, bump every manifest and in-set dependency range, commit, tag, push and
publish. Each stage can be switched off with its flag.

A failure before the commit leaves the working tree as it was. A failure after
the commit reports the stage and which projects were published, so the release
can be finished with "publish".`,
		Args: cobra.MaximumNArgs(1),
	}
}

// AddFlags adds the release flags to the given Cobra command.
func (it *ReleaseController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	addRegistryFlags(cmd)
	cmd.Flags().String("preid", "", "Prerelease identifier for pre* increments (default: release.preid)")
	cmd.Flags().StringP("message", "m", "", "Release commit message (default: release.message)")
	cmd.Flags().String("remote", "", "Remote to push to (default: release.remote)")
	cmd.Flags().String("report-file", "", "Write a YAML report of the release to this file")
	cmd.Flags().Bool("clean", false, "Clean before building")
	cmd.Flags().Bool("build", true, "Build before bumping")
	cmd.Flags().Bool("test", false, "Test before bumping")
	cmd.Flags().Bool("git", true, "Commit and tag the release")
	cmd.Flags().Bool("push", true, "Push the release commit and tags")
	cmd.Flags().Bool("publish", true, "Publish to the registry")
}

// Execute releases the selected projects.
func (it *ReleaseController) Execute(cmd *cobra.Command, args []string) error {
	overrides := make(map[string]any)
	setIfChanged(cmd, overrides, "preid", "release.preid", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "message", "release.message", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "remote", "release.remote", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "report-file", "release.report_file", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "clean", "release.do_clean", cmd.Flags().GetBool)
	setIfChanged(cmd, overrides, "build", "release.do_build", cmd.Flags().GetBool)
	setIfChanged(cmd, overrides, "test", "release.do_test", cmd.Flags().GetBool)
	setIfChanged(cmd, overrides, "git", "release.do_git", cmd.Flags().GetBool)
	setIfChanged(cmd, overrides, "push", "release.do_push", cmd.Flags().GetBool)
	setIfChanged(cmd, overrides, "publish", "release.do_publish", cmd.Flags().GetBool)
	if doGit, _ := cmd.Flags().GetBool("git"); !doGit && !cmd.Flags().Changed("push") {
		overrides["release.do_push"] = false
	}
	addRegistryOverrides(cmd, overrides)

	settings, err := loadSettings(cmd, overrides)
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		return err
	}

	opts := commands.ReleaseOptions{Selection: selectionFromFlags(cmd)}
	if len(args) > 0 {
		opts.Bump = args[0]
	}
	opts.Preid = settings.Release.Preid
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	plan, err := it.command.Execute(cmd.Context(), settings, opts)
	if plan != nil {
		printPlanSummary(cmd, plan, opts.DryRun)
	}
	if err != nil {
		logger.Errorf("Release failed: %v", err)
		return err
	}
	return nil
}

// addRegistryFlags adds the flags shared by release and publish.
func addRegistryFlags(cmd *cobra.Command) {
	cmd.Flags().String("dist-tag", "", "Registry tag to publish under (default: release.dist_tag)")
	cmd.Flags().String("registry", "", "Registry to publish to: npm or github (default: release.registry)")
	cmd.Flags().String("registry-url", "", "Registry URL (default: release.registry_url)")
}

func addRegistryOverrides(cmd *cobra.Command, overrides map[string]any) {
	setIfChanged(cmd, overrides, "dist-tag", "release.dist_tag", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "registry", "release.registry", cmd.Flags().GetString)
	setIfChanged(cmd, overrides, "registry-url", "release.registry_url", cmd.Flags().GetString)
}

func printPlanSummary(cmd *cobra.Command, plan *entities.ReleasePlan, dryRun bool) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	title := "Release"
	if dryRun {
		title = "Release plan (dry run)"
	}
	_, _ = bold.Fprintf(out, "%s %s\n", title, plan.ID)
	for _, item := range plan.Items {
		mark := " "
		if item.Published {
			mark = green.Sprint("✔")
		}
		fmt.Fprintf(out, "  %s %s %s -> %s\n", mark, item.Project.Name, item.FromVersion, item.ToVersion)
	}

	if plan.FailedStage == "" {
		fmt.Fprintf(out, "state: %s\n", plan.State)
		return
	}
	_, _ = red.Fprintf(out, "failed at %s\n", plan.FailedStage)
	if plan.IsCommitted() {
		pending := pendingNames(plan)
		if len(pending) > 0 {
			fmt.Fprintf(out, "the release commit exists; run \"publish\" to publish %v\n", pending)
		}
	}
}

func pendingNames(plan *entities.ReleasePlan) []string {
	var names []string
	for _, item := range plan.Items {
		if !item.Published && !item.Project.Private {
			names = append(names, item.Project.Name)
		}
	}
	sort.Strings(names)
	return names
}
