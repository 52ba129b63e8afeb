// Package deployer drives the end-to-end deployment pipeline as a strict
// state machine: check tools, confirm, ensure cluster, build, push, install,
// verify. Stages run strictly in order, short-circuit on the first hard
// failure, and are never retried automatically; recovery is the operator
// fixing the reported cause and re-running.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kubeprofiles/profilectl/pkg/defaults"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/imageref"
	"github.com/kubeprofiles/profilectl/pkg/profile"
	"github.com/kubeprofiles/profilectl/pkg/tools"
)

// errAborted signals a negative confirmation. It never escapes Run.
var errAborted = errors.New("aborted by operator")

// Request is the input to one pipeline run.
type Request struct {
	// Profile is the validated profile the artifacts were generated from.
	Profile *profile.Profile

	// Image is the canonical, already-patched image reference.
	Image imageref.Reference

	// OutputRoot is the directory holding the generated artifacts.
	OutputRoot string
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithRunner substitutes the external process runner.
func WithRunner(r tools.Runner) Option {
	return func(d *Deployer) {
		d.runner = r
		d.checker = tools.NewChecker(r)
	}
}

// WithConfirmer substitutes the confirmation decision source.
func WithConfirmer(c Confirmer) Option {
	return func(d *Deployer) { d.confirm = c }
}

// WithSummaryFunc substitutes the verification query.
func WithSummaryFunc(f SummaryFunc) Option {
	return func(d *Deployer) { d.summarize = f }
}

// WithOutput redirects human-readable status lines.
func WithOutput(w io.Writer) Option {
	return func(d *Deployer) { d.out = w }
}

// WithRequiredTools overrides the probed tool set.
func WithRequiredTools(required []tools.Tool) Option {
	return func(d *Deployer) { d.required = required }
}

// Deployer owns the pipeline stage sequence for one or more runs. It holds
// no state across runs: every Run re-checks external state instead of
// trusting a self-maintained model.
type Deployer struct {
	runner    tools.Runner
	checker   *tools.Checker
	confirm   Confirmer
	summarize SummaryFunc
	out       io.Writer
	required  []tools.Tool
}

// New creates a deployer. Without options it runs real external tools and
// refuses to proceed past confirmation.
func New(opts ...Option) *Deployer {
	d := &Deployer{
		out:      os.Stdout,
		required: tools.Required,
		// Declining is the safe default when no decision source is wired.
		confirm: func(context.Context, Confirmation) (bool, error) { return false, nil },
	}
	runner := tools.NewExecRunner()
	d.runner = runner
	d.checker = tools.NewChecker(runner)

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drives the full pipeline for the request. The returned Outcome always
// reflects the terminal state; the error is non-nil only for hard failures
// (an operator abort yields StateAborted and a nil error).
func (d *Deployer) Run(ctx context.Context, req Request) (*Outcome, error) {
	outcome := &Outcome{
		RunID: uuid.NewString(),
		State: StateInit,
	}

	logger := slog.With(
		slog.String("run_id", outcome.RunID),
		slog.String("profile", req.Profile.Name),
		slog.String("image", req.Image.String()),
	)
	logger.Info("deployment run starting")

	stages := []struct {
		stage Stage
		next  State
		run   func(context.Context, Request, *Outcome) error
	}{
		{StageCheckTools, StateToolsChecked, d.checkTools},
		{StageConfirm, StateConfirmed, d.confirmRun},
		{StageEnsureCluster, StateClusterReady, d.ensureCluster},
		{StageBuildImage, StateImageBuilt, d.buildImage},
		{StagePushImage, StateImagePushed, d.pushImage},
		{StageInstallChart, StateChartInstalled, d.installChart},
		{StageVerify, StateVerified, d.verify},
	}

	for _, s := range stages {
		fmt.Fprintf(d.out, ">> %s\n", s.stage)
		logger.Info("stage starting", slog.String("stage", string(s.stage)))

		if err := s.run(ctx, req, outcome); err != nil {
			if errors.Is(err, errAborted) {
				d.transition(outcome, StateAborted)
				logger.Info("run aborted by operator")
				fmt.Fprintln(d.out, "deployment cancelled")
				return outcome, nil
			}

			outcome.FailedStage = s.stage
			d.transition(outcome, StateFailed)
			logger.Error("stage failed",
				slog.String("stage", string(s.stage)),
				slog.String("cause", string(pkgerrors.CodeOf(err))),
			)
			return outcome, err
		}

		d.transition(outcome, s.next)
	}

	d.transition(outcome, StateDone)
	logger.Info("deployment run complete", slog.Int("warnings", len(outcome.Warnings)))
	return outcome, nil
}

// transition applies a validated state change. An invalid transition is an
// orchestrator bug and panics rather than silently corrupting the run.
func (d *Deployer) transition(outcome *Outcome, to State) {
	if !allowedTransition(outcome.State, to) {
		panic(fmt.Sprintf("invalid state transition %s -> %s", outcome.State, to))
	}
	outcome.State = to
}

func (d *Deployer) checkTools(ctx context.Context, _ Request, _ *Outcome) error {
	probes := d.checker.CheckAll(ctx, d.required)

	var missing, notReady []string
	for _, tool := range d.required {
		probe := probes[tool.Name]
		switch {
		case !probe.Present:
			missing = append(missing, tool.Name)
		case !probe.Ready:
			notReady = append(notReady, tool.Name)
		default:
			fmt.Fprintf(d.out, "   %s found (%s)\n", tool.Name, probe.Version)
		}
	}

	if len(missing) == 0 && len(notReady) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("not installed: %s", strings.Join(missing, ", ")))
	}
	if len(notReady) > 0 {
		parts = append(parts, fmt.Sprintf("installed but not ready: %s", strings.Join(notReady, ", ")))
	}
	return &StageError{
		Stage: StageCheckTools,
		Err:   pkgerrors.New(pkgerrors.ErrCodeMissingTool, strings.Join(parts, "; ")),
	}
}

func (d *Deployer) confirmRun(ctx context.Context, req Request, _ *Outcome) error {
	fmt.Fprintf(d.out, "   image:     %s\n", req.Image)
	fmt.Fprintf(d.out, "   namespace: %s\n", req.Profile.Namespace())

	proceed, err := d.confirm(ctx, Confirmation{
		Image:     req.Image.String(),
		Namespace: req.Profile.Namespace(),
	})
	if err != nil {
		return &StageError{
			Stage: StageConfirm,
			Err:   pkgerrors.Wrap(pkgerrors.ErrCodeInternal, "confirmation failed", err),
		}
	}
	if !proceed {
		return errAborted
	}
	return nil
}

func (d *Deployer) ensureCluster(ctx context.Context, _ Request, outcome *Outcome) error {
	status, err := d.runner.Run(ctx, "minikube", "status")
	if err != nil {
		return d.external(ctx, StageEnsureCluster, pkgerrors.ErrCodeClusterStart, err)
	}
	if status.ExitCode == 0 && strings.Contains(status.Stdout, "Running") {
		// Idempotent re-entry: never restart a healthy cluster.
		fmt.Fprintln(d.out, "   cluster already running")
	} else {
		fmt.Fprintln(d.out, "   starting minikube (this may take a few minutes)")
		start, err := d.runner.Run(ctx, "minikube", "start", "--driver=docker")
		if err != nil {
			return d.external(ctx, StageEnsureCluster, pkgerrors.ErrCodeClusterStart, err)
		}
		if start.ExitCode != 0 {
			return &StageError{
				Stage:  StageEnsureCluster,
				Output: start.Tail(10),
				Err:    pkgerrors.New(pkgerrors.ErrCodeClusterStart, "minikube start failed"),
			}
		}
	}

	nodes, err := d.runner.Run(ctx, "kubectl", "get", "nodes")
	if err != nil {
		return d.external(ctx, StageEnsureCluster, pkgerrors.ErrCodeClusterStart, err)
	}
	if nodes.ExitCode != 0 {
		outcome.Warnings = append(outcome.Warnings,
			"cluster is up but node listing failed: "+nodes.Tail(3))
	}
	return nil
}

func (d *Deployer) buildImage(ctx context.Context, req Request, _ *Outcome) error {
	fmt.Fprintf(d.out, "   building %s\n", req.Image)

	result, err := d.runner.Run(ctx, "docker", "build",
		"-t", req.Image.String(),
		"-f", filepath.Join(req.OutputRoot, "Dockerfile"),
		req.OutputRoot,
	)
	if err != nil {
		return d.external(ctx, StageBuildImage, pkgerrors.ErrCodeBuild, err)
	}
	if result.ExitCode != 0 {
		return &StageError{
			Stage:  StageBuildImage,
			Output: result.Tail(20),
			Err:    pkgerrors.New(pkgerrors.ErrCodeBuild, "docker build failed"),
		}
	}
	return nil
}

func (d *Deployer) pushImage(ctx context.Context, req Request, _ *Outcome) error {
	fmt.Fprintf(d.out, "   pushing %s\n", req.Image)

	result, err := d.runner.Run(ctx, "docker", "push", req.Image.String())
	if err != nil {
		return d.external(ctx, StagePushImage, pkgerrors.ErrCodePush, err)
	}
	if result.ExitCode != 0 {
		return &StageError{
			Stage:  StagePushImage,
			Output: result.Tail(20),
			Err:    pkgerrors.New(pkgerrors.ErrCodePush, "docker push failed"),
		}
	}
	return nil
}

func (d *Deployer) installChart(ctx context.Context, req Request, outcome *Outcome) error {
	name := req.Profile.Name
	namespace := req.Profile.Namespace()
	chartDir := filepath.Join(req.OutputRoot, "helm")

	// Best-effort cleanup of a previous install; a missing release is fine.
	if _, err := d.runner.Run(ctx, "helm", "uninstall", name, "--namespace", namespace); err != nil {
		return d.external(ctx, StageInstallChart, pkgerrors.ErrCodeInstall, err)
	}

	fmt.Fprintf(d.out, "   installing chart %s into %s\n", name, namespace)
	result, err := d.runner.Run(ctx, "helm", "install", name, chartDir,
		"--namespace", namespace, "--create-namespace")
	if err != nil {
		return d.external(ctx, StageInstallChart, pkgerrors.ErrCodeInstall, err)
	}
	if result.ExitCode != 0 {
		return &StageError{
			Stage:  StageInstallChart,
			Output: result.Tail(20),
			Err:    pkgerrors.New(pkgerrors.ErrCodeInstall, "helm install failed"),
		}
	}

	waitTimeout := fmt.Sprintf("%ds", int(defaults.PodReadyTimeout.Seconds()))
	wait, err := d.runner.Run(ctx, "kubectl", "wait",
		"--for=condition=ready", "pod",
		"-l", "app="+name,
		"-n", namespace,
		"--timeout="+waitTimeout,
	)
	if err != nil {
		return d.external(ctx, StageInstallChart, pkgerrors.ErrCodeInstall, err)
	}
	if wait.ExitCode != 0 {
		outcome.Warnings = append(outcome.Warnings,
			"chart installed but pods not ready within "+waitTimeout+": "+wait.Tail(3))
	}
	return nil
}

func (d *Deployer) verify(ctx context.Context, req Request, outcome *Outcome) error {
	if d.summarize == nil {
		outcome.Warnings = append(outcome.Warnings, "verification skipped: no cluster client configured")
		return nil
	}

	// A flaked query is a warning: the deployment itself may well have
	// succeeded even if this read-only listing did not.
	summary, err := d.summarize(ctx, req.Profile.Namespace(), req.Profile.Name)
	if err != nil {
		if ctx.Err() != nil {
			return d.external(ctx, StageVerify, pkgerrors.ErrCodeInterrupted, err)
		}
		outcome.Warnings = append(outcome.Warnings, "verification query failed: "+err.Error())
		return nil
	}

	outcome.Summary = summary
	if !summary.WorkloadPresent {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("expected workload %s not found in namespace %s",
				req.Profile.Name, req.Profile.Namespace()))
	}
	return nil
}

// external maps a runner error to a stage failure, distinguishing an
// operator interrupt from a start failure.
func (d *Deployer) external(ctx context.Context, stage Stage, code pkgerrors.Code, err error) error {
	if ctx.Err() != nil {
		return &StageError{
			Stage: stage,
			Err:   pkgerrors.Wrap(pkgerrors.ErrCodeInterrupted, "run interrupted", ctx.Err()),
		}
	}
	return &StageError{
		Stage: stage,
		Err:   pkgerrors.Wrap(code, "external invocation failed", err),
	}
}
