package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kubeprofiles/profilectl/pkg/bundler"
	"github.com/kubeprofiles/profilectl/pkg/deployer"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/imageref"
	k8sclient "github.com/kubeprofiles/profilectl/pkg/k8s/client"
	"github.com/kubeprofiles/profilectl/pkg/profile"
	"github.com/kubeprofiles/profilectl/pkg/serializer"
	"github.com/kubeprofiles/profilectl/pkg/verifier"
)

var kubeconfigFlag = &cli.StringFlag{
	Name:    "kubeconfig",
	Usage:   "Path to the kubeconfig file for post-install verification",
	Sources: cli.EnvVars("KUBECONFIG"),
}

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:                  "deploy",
		Aliases:               []string{"dep"},
		EnableShellCompletion: true,
		Usage:                 "Build, push, and install a profile on a local cluster",
		Description: `Runs the full deployment pipeline for a profile:

  1. check-tools:     docker, kubectl, helm, and minikube must be installed
  2. confirm:         show the image and namespace, ask to proceed
  3. ensure-cluster:  reuse a running minikube cluster or start one
  4. build-image:     docker build from the generated Dockerfile
  5. push-image:      docker push to the registry
  6. install-chart:   helm install of the generated chart
  7. verify:          summarize what is actually running

Stages run strictly in order and stop at the first failure. Nothing is
retried automatically: fix the reported cause and re-run. Re-running is
safe, builds and installs are idempotent client-side.

If the output directory holds no generated artifacts yet, they are
generated first from the profile.

# Examples

Deploy with an interactive confirmation:
  profilectl deploy --profile profile.yaml --output ./out --registry-user alice

Deploy non-interactively (CI):
  profilectl deploy --profile profile.yaml --output ./out --registry-user alice --yes

Print the verification summary as JSON:
  profilectl deploy -p profile.yaml -o ./out -u alice --yes --format json

# Exit Codes

  0  success, or deployment declined at the confirmation prompt
  1  profile validation or artifact generation failure
  2  required tool missing or not ready
  3  pipeline stage failure (cluster, build, push, install)`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "profile",
				Aliases:  []string{"p"},
				Required: true,
				Usage:    "Path to the profile YAML file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Directory holding the generated artifacts",
			},
			&cli.StringFlag{
				Name:     "registry-user",
				Aliases:  []string{"u"},
				Required: true,
				Usage:    "Registry username the image is pushed under",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   "yaml",
				Usage:   "Verification summary format (yaml, json, table)",
			},
			&cli.StringFlag{
				Name:  "summary-output",
				Value: serializer.StdoutURI,
				Usage: "File path for the verification summary (default: stdout)",
			},
			kubeconfigFlag,
		},
		Action: runDeploy,
	}
}

func runDeploy(ctx context.Context, cmd *cli.Command) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	registryUser := strings.TrimSpace(cmd.String("registry-user"))

	p, err := loadProfile(cmd)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "path", cmd.String("profile"))
		return err
	}

	ref, err := imageref.Derive(p, registryUser)
	if err != nil {
		return err
	}
	if ref.IsPlaceholder() {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"--registry-user must be a concrete registry username, not %q", registryUser)
	}

	outputDir := cmd.String("output")
	if err := ensureArtifacts(p, outputDir, registryUser); err != nil {
		return err
	}

	// Patch is a no-op when the artifacts were generated with this user
	// already, and fatal when the values file carries someone else's.
	if err := bundler.Patch(bundler.ValuesPath(outputDir), registryUser); err != nil {
		return err
	}

	kubeconfig := cmd.String("kubeconfig")
	d := deployer.New(
		deployer.WithOutput(cmd.Root().Writer),
		deployer.WithConfirmer(confirmer(cmd)),
		deployer.WithSummaryFunc(func(ctx context.Context, namespace, appName string) (*verifier.Summary, error) {
			clientset, _, err := k8sclient.Build(kubeconfig)
			if err != nil {
				return nil, err
			}
			return verifier.New(clientset).Summarize(ctx, namespace, appName)
		}),
	)

	outcome, err := d.Run(ctx, deployer.Request{
		Profile:    p,
		Image:      ref,
		OutputRoot: outputDir,
	})
	if err != nil {
		return err
	}

	for _, warning := range outcome.Warnings {
		fmt.Fprintf(cmd.Root().ErrWriter, "warning: %s\n", warning)
	}

	if outcome.State == deployer.StateAborted || outcome.Summary == nil {
		return nil
	}

	writer, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("summary-output"))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeIO, "failed to open summary output", err)
	}
	defer func() {
		if closer, ok := writer.(serializer.Closer); ok {
			_ = closer.Close()
		}
	}()
	return writer.Serialize(ctx, outcome.Summary)
}

// ensureArtifacts generates the deployment artifacts when the output
// directory holds none yet.
func ensureArtifacts(p *profile.Profile, outputDir, registryUser string) error {
	if _, err := os.Stat(bundler.ValuesPath(outputDir)); err == nil {
		return nil
	}

	slog.Info("no generated artifacts found, generating",
		slog.String("profile", p.Name),
		slog.String("output", outputDir),
	)

	artifacts, err := bundler.NewRenderer().Render(p, registryUser)
	if err != nil {
		return err
	}
	_, err = bundler.NewWriter().Write(artifacts, outputDir)
	return err
}

// confirmer builds the confirmation decision source: auto-approve with
// --yes, otherwise an interactive stdin prompt.
func confirmer(cmd *cli.Command) deployer.Confirmer {
	if cmd.Bool("yes") {
		return func(context.Context, deployer.Confirmation) (bool, error) {
			return true, nil
		}
	}

	return func(_ context.Context, c deployer.Confirmation) (bool, error) {
		fmt.Fprintf(cmd.Root().Writer, "Deploy %s to namespace %s? [y/N]: ", c.Image, c.Namespace)

		reader := bufio.NewReader(cmd.Root().Reader)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
