package deployer

import (
	"context"
	"fmt"

	"github.com/kubeprofiles/profilectl/pkg/verifier"
)

// State is the orchestrator's position in the pipeline.
type State string

const (
	StateInit           State = "Init"
	StateToolsChecked   State = "ToolsChecked"
	StateConfirmed      State = "Confirmed"
	StateClusterReady   State = "ClusterReady"
	StateImageBuilt     State = "ImageBuilt"
	StateImagePushed    State = "ImagePushed"
	StateChartInstalled State = "ChartInstalled"
	StateVerified       State = "Verified"
	StateDone           State = "Done"

	// StateFailed is the terminal state for any hard stage failure.
	StateFailed State = "Failed"

	// StateAborted is the terminal state for a negative confirmation. It is
	// user-chosen, not an error, and exits with a success status.
	StateAborted State = "Aborted"
)

// Stage names one ordered pipeline step.
type Stage string

const (
	StageCheckTools    Stage = "check-tools"
	StageConfirm       Stage = "confirm"
	StageEnsureCluster Stage = "ensure-cluster"
	StageBuildImage    Stage = "build-image"
	StagePushImage     Stage = "push-image"
	StageInstallChart  Stage = "install-chart"
	StageVerify        Stage = "verify"
)

// forward is the strictly sequential happy path. Failed is reachable from
// any non-terminal state; Aborted only from ToolsChecked (the confirmation
// stage).
var forward = map[State]State{
	StateInit:           StateToolsChecked,
	StateToolsChecked:   StateConfirmed,
	StateConfirmed:      StateClusterReady,
	StateClusterReady:   StateImageBuilt,
	StateImageBuilt:     StateImagePushed,
	StateImagePushed:    StateChartInstalled,
	StateChartInstalled: StateVerified,
	StateVerified:       StateDone,
}

// isTerminal reports whether the state ends the run.
func isTerminal(s State) bool {
	switch s {
	case StateDone, StateFailed, StateAborted:
		return true
	default:
		return false
	}
}

// allowedTransition validates a single state change.
func allowedTransition(from, to State) bool {
	if isTerminal(from) {
		return false
	}
	if to == StateFailed {
		return true
	}
	if to == StateAborted {
		return from == StateToolsChecked
	}
	return forward[from] == to
}

// Confirmation is what the operator is asked to approve.
type Confirmation struct {
	Image     string
	Namespace string
}

// Confirmer decides whether the pipeline proceeds past the confirmation
// stage. It is injected so tests (and --yes) can substitute a scripted
// decision source for the interactive prompt.
type Confirmer func(ctx context.Context, c Confirmation) (proceed bool, err error)

// SummaryFunc produces the post-install summary. Injected so tests can run
// the pipeline without a cluster.
type SummaryFunc func(ctx context.Context, namespace, appName string) (*verifier.Summary, error)

// Outcome is the aggregated result of one pipeline run.
type Outcome struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	// State is the terminal state the run reached.
	State State

	// FailedStage names the stage that failed, when State is Failed.
	FailedStage Stage

	// Summary is the verification summary, when the run got that far.
	Summary *verifier.Summary

	// Warnings collects non-fatal findings (e.g. a flaked verification
	// query after a successful install).
	Warnings []string
}

// StageError is a hard stage failure. It wraps a coded error and carries the
// last chunk of captured external output for diagnosis.
type StageError struct {
	Stage  Stage
	Output string
	Err    error
}

func (e *StageError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("stage %s: %v: %s", e.Stage, e.Err, e.Output)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
