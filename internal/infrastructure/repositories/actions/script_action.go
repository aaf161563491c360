package actions

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

const scriptPlaceholder = "{script}"

// ScriptAction runs the shell command configured for an operation. JavaScript projects use the
// command from settings; other manifest kinds run the script of the same name they declare.
type ScriptAction struct {
	operation entities.Operation
}

var _ repositories.ActionRepository = (*ScriptAction)(nil)

// NewScriptAction creates the action of a command-driven operation (build, lint, test, run).
func NewScriptAction(op entities.Operation) *ScriptAction {
	return &ScriptAction{operation: op}
}

func (a *ScriptAction) Operation() entities.Operation { return a.operation }

// Execute runs the resolved command. A project with nothing to run succeeds without output.
func (a *ScriptAction) Execute(
	ctx context.Context,
	project *entities.Project,
	opts repositories.ActionOptions,
) repositories.ActionOutcome {
	command := ResolveCommand(a.operation, project, opts)
	if command == "" {
		logger.Debugf("[%s] Nothing to run for %s", a.operation, project.Name)
		return repositories.ActionOutcome{}
	}

	logger.Debugf("[%s] %s: %s", a.operation, project.Name, command)
	output, err := runShell(ctx, project, command)
	return repositories.ActionOutcome{Output: output, Err: err}
}

// ResolveCommand returns the shell command an operation runs for a project, or "" when there is
// nothing to do.
func ResolveCommand(op entities.Operation, project *entities.Project, opts repositories.ActionOptions) string {
	var command string
	script := string(op)
	if op == entities.OperationRun {
		script = opts.Script
	}

	switch {
	case project.Kind == entities.KindJavaScript && opts.Settings != nil:
		command = opts.Settings.Command(op)
		if op == entities.OperationRun {
			if !project.HasScript(script) {
				return ""
			}
			command = strings.ReplaceAll(command, scriptPlaceholder, script)
		}
	case project.HasScript(script):
		command = project.Scripts[script]
	}

	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	if len(opts.Args) > 0 {
		command += " " + strings.Join(opts.Args, " ")
	}
	return command
}
