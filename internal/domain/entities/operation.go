package entities

import "fmt"

// Operation is the closed set of per-project actions the orchestrator can run.
type Operation string

const (
	OperationBootstrap Operation = "bootstrap"
	OperationBuild     Operation = "build"
	OperationClean     Operation = "clean"
	OperationLint      Operation = "lint"
	OperationTest      Operation = "test"
	OperationRun       Operation = "run"
	OperationUnlink    Operation = "unlink"
)

// Operations lists every operation in CLI order.
func Operations() []Operation {
	return []Operation{
		OperationBootstrap,
		OperationBuild,
		OperationClean,
		OperationLint,
		OperationTest,
		OperationRun,
		OperationUnlink,
	}
}

// Ordered reports whether the operation must respect dependency order.
func (o Operation) Ordered() bool {
	switch o {
	case OperationBootstrap, OperationBuild, OperationRun:
		return true
	default:
		return false
	}
}

// ParseOperation converts a string into an Operation.
func ParseOperation(raw string) (Operation, error) {
	for _, op := range Operations() {
		if string(op) == raw {
			return op, nil
		}
	}
	return "", NewConfigurationError(fmt.Sprintf("unknown operation %q", raw), nil)
}
