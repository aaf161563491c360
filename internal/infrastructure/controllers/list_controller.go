package controllers

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

// ListController handles the "list" subcommand.
type ListController struct {
	command commands.List
}

// NewListController creates a new ListController.
func NewListController(command commands.List) *ListController {
	return &ListController{command: command}
}

// GetBind returns the Cobra command metadata for "list".
func (it *ListController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "list",
		Short: "List the discovered projects",
		Long: `List the projects found under the configured packages directories.
With --graph, each project is followed by the in-set projects it depends on.`,
		Args: cobra.NoArgs,
	}
}

// AddFlags adds the list flags to the given Cobra command.
func (it *ListController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	cmd.Flags().Bool("sorted", false, "List in dependency order instead of discovery order")
	cmd.Flags().BoolP("long", "l", false, "Show version, kind and location of every project")
	cmd.Flags().Bool("graph", false, "Show the in-set dependencies of every project")
}

// Execute lists the selected projects.
func (it *ListController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, nil)
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		return err
	}

	sorted, _ := cmd.Flags().GetBool("sorted")
	projects, err := it.command.Execute(cmd.Context(), settings, commands.ListOptions{
		Selection: selectionFromFlags(cmd),
		Sorted:    sorted,
	})
	if err != nil {
		logger.Errorf("List failed: %v", err)
		return err
	}

	long, _ := cmd.Flags().GetBool("long")
	graph, _ := cmd.Flags().GetBool("graph")
	switch {
	case graph:
		printGraph(cmd, projects)
	case long:
		printLong(cmd, projects)
	default:
		for _, p := range projects {
			fmt.Fprintln(cmd.OutOrStdout(), p.Name)
		}
	}
	return nil
}

func printLong(cmd *cobra.Command, projects []*entities.Project) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	gray := color.New(color.FgHiBlack)
	for _, p := range projects {
		visibility := ""
		if p.Private {
			visibility = gray.Sprint("(private)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Version, p.Kind, p.Folder, visibility)
	}
	_ = w.Flush()
}

func printGraph(cmd *cobra.Command, projects []*entities.Project) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	graph := entities.NewDependencyGraph(projects)
	for _, p := range projects {
		deps := entities.ProjectNames(graph.Dependencies(p.Name))
		_, _ = bold.Fprint(out, p.Name)
		if len(deps) == 0 {
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, " -> %s\n", strings.Join(deps, ", "))
	}
}
