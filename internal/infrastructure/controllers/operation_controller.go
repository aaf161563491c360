package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/monorepo/internal/domain/commands"
	"github.com/rios0rios0/monorepo/internal/domain/entities"
)

const failureTailLines = 20

//nolint:gochecknoglobals // constant table
var operationDescriptions = map[entities.Operation]string{
	entities.OperationBootstrap: "Install dependencies and link sibling projects",
	entities.OperationBuild:     "Build every project in dependency order",
	entities.OperationClean:     "Remove build outputs of every project",
	entities.OperationLint:      "Lint every project",
	entities.OperationTest:      "Test every project",
	entities.OperationRun:       "Run a named script in every project declaring it",
	entities.OperationUnlink:    "Remove the links created by bootstrap",
}

// OperationController handles one per-project operation subcommand.
type OperationController struct {
	operation entities.Operation
	command   commands.Operation
}

// NewOperationController creates the controller of a single operation.
func NewOperationController(op entities.Operation, command commands.Operation) *OperationController {
	return &OperationController{operation: op, command: command}
}

// NewOperationControllers creates one controller per operation, in CLI order.
func NewOperationControllers(command commands.Operation) []*OperationController {
	ops := entities.Operations()
	out := make([]*OperationController, 0, len(ops))
	for _, op := range ops {
		out = append(out, NewOperationController(op, command))
	}
	return out
}

// GetBind returns the Cobra command metadata for the operation.
func (it *OperationController) GetBind() entities.ControllerBind {
	short := operationDescriptions[it.operation]
	if it.operation == entities.OperationRun {
		return entities.ControllerBind{
			Use:   "run <script> [-- args...]",
			Short: short,
			Long: `Run a script in every selected project that declares it, respecting
dependency order. Arguments after "--" are appended to the script.`,
			Args: cobra.MinimumNArgs(1),
		}
	}

	order := "Independent projects run concurrently."
	if it.operation.Ordered() {
		order = "A project starts only after every project it depends on succeeded."
	}
	return entities.ControllerBind{
		Use:   string(it.operation),
		Short: short,
		Long:  fmt.Sprintf("%s.\n\n%s", short, order),
		Args:  cobra.NoArgs,
	}
}

// AddFlags adds the operation flags to the given Cobra command.
func (it *OperationController) AddFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	cmd.Flags().Bool("bail", true, "Stop starting projects after the first failure")
	cmd.Flags().Bool("stream", false, "Print each project's output as it finishes")
}

// Execute runs the operation and prints a summary.
func (it *OperationController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, nil)
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		return err
	}

	opts := commands.OperationOptions{
		Operation: it.operation,
		Selection: selectionFromFlags(cmd),
	}
	opts.Bail, _ = cmd.Flags().GetBool("bail")
	opts.Stream, _ = cmd.Flags().GetBool("stream")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	if it.operation == entities.OperationRun && len(args) > 0 {
		opts.Script = args[0]
		opts.Args = args[1:]
	}

	report, err := it.command.Execute(cmd.Context(), settings, opts)
	if report != nil && len(report.Results) > 0 {
		printRunReport(cmd, report)
	}
	if err != nil {
		logger.Errorf("%s failed: %v", it.operation, err)
		return err
	}
	return nil
}

func printRunReport(cmd *cobra.Command, report *entities.RunReport) {
	w := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w)
	_, _ = bold.Fprintf(w, "%s summary\n", report.Operation)
	for _, res := range report.Results {
		switch res.Status {
		case entities.TaskSuccess:
			_, _ = green.Fprintf(w, "  ✔ %s", res.Project.Name)
			fmt.Fprintf(w, " (%s)\n", res.Duration.Round(time.Millisecond))
		case entities.TaskFailed:
			_, _ = red.Fprintf(w, "  ✖ %s", res.Project.Name)
			fmt.Fprintf(w, ": %v\n", res.Err)
			for _, line := range tail(res.Output, failureTailLines) {
				fmt.Fprintf(w, "      %s\n", line)
			}
		case entities.TaskSkipped:
			_, _ = yellow.Fprintf(w, "  - %s", res.Project.Name)
			fmt.Fprintf(w, " skipped: %s\n", res.Output)
		}
	}
	fmt.Fprintf(w, "%d succeeded, %d failed, %d skipped\n",
		len(report.Succeeded()), len(report.Failed()), len(report.Skipped()))
}

// tail returns the last n lines of output.
func tail(output string, n int) []string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
