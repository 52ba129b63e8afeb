package tools

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kubeprofiles/profilectl/pkg/defaults"
)

// Tool describes one required external tool and how to probe it.
type Tool struct {
	// Name is the binary name on PATH.
	Name string

	// VersionArgs is the lightweight version query.
	VersionArgs []string

	// ReadyArgs optionally probes minimal readiness beyond presence
	// (e.g. "docker info" reaches the daemon). Empty means presence on
	// PATH plus a working version query is enough.
	ReadyArgs []string
}

// Required is the tool set the deployment pipeline depends on.
var Required = []Tool{
	{Name: "docker", VersionArgs: []string{"--version"}, ReadyArgs: []string{"info"}},
	{Name: "kubectl", VersionArgs: []string{"version", "--client"}},
	{Name: "helm", VersionArgs: []string{"version", "--short"}},
	{Name: "minikube", VersionArgs: []string{"version", "--short"}},
}

// Probe is the outcome of checking one tool. Absence is a normal outcome
// represented here, never an error; the orchestrator decides whether absence
// is fatal.
type Probe struct {
	Tool    string
	Present bool
	Version string
	Ready   bool
}

// Checker probes external tools for presence and minimal readiness.
type Checker struct {
	runner  Runner
	timeout time.Duration
}

// NewChecker creates a checker over the given runner.
func NewChecker(runner Runner) *Checker {
	return &Checker{runner: runner, timeout: defaults.ProbeTimeout}
}

// CheckAll probes every tool and returns one result per tool. Probes are
// independent read-only queries and run concurrently, each under its own
// bounded timeout.
func (c *Checker) CheckAll(ctx context.Context, required []Tool) map[string]Probe {
	probes := make(map[string]Probe, len(required))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, tool := range required {
		g.Go(func() error {
			probe := c.check(ctx, tool)
			mu.Lock()
			probes[tool.Name] = probe
			mu.Unlock()
			return nil
		})
	}
	// The group error is always nil: absence is encoded in the probes.
	_ = g.Wait()

	return probes
}

func (c *Checker) check(ctx context.Context, tool Tool) Probe {
	probe := Probe{Tool: tool.Name}

	if _, err := c.runner.LookPath(tool.Name); err != nil {
		slog.Debug("tool not found on PATH", slog.String("tool", tool.Name))
		return probe
	}
	probe.Present = true

	versionCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.runner.Run(versionCtx, tool.Name, tool.VersionArgs...)
	if err != nil || result.ExitCode != 0 {
		slog.Debug("tool version query failed",
			slog.String("tool", tool.Name),
			slog.Int("exit_code", result.ExitCode),
		)
		return probe
	}
	probe.Version = firstLine(result.Stdout)

	if len(tool.ReadyArgs) > 0 {
		readyCtx, cancelReady := context.WithTimeout(ctx, c.timeout)
		defer cancelReady()

		ready, err := c.runner.Run(readyCtx, tool.Name, tool.ReadyArgs...)
		probe.Ready = err == nil && ready.ExitCode == 0
		if !probe.Ready {
			slog.Debug("tool present but not ready",
				slog.String("tool", tool.Name),
				slog.String("detail", ready.Tail(3)),
			)
		}
		return probe
	}

	probe.Ready = true
	return probe
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
