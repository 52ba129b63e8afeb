package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/kubeprofiles/profilectl/pkg/bundler"
	"github.com/kubeprofiles/profilectl/pkg/imageref"
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "generate",
		Aliases:               []string{"gen"},
		EnableShellCompletion: true,
		Usage:                 "Generate deployment artifacts from a profile",
		Description: `Generates a Dockerfile and a Helm chart from a profile file.

# Output Layout

  - Dockerfile: container build file for the profile's base image and packages
  - helm/Chart.yaml: chart metadata
  - helm/values.yaml: image reference, namespace, and service settings
  - helm/templates/: namespace, deployment, service, and network policy manifests

# Image Reference

Without --registry-user, the generated values.yaml carries the placeholder
YOUR_REGISTRY_USERNAME in the image repository. Patch it later by re-running
with --registry-user, or let 'profilectl deploy --registry-user' do it.

# Examples

Generate with the registry placeholder:
  profilectl generate --profile profile.yaml --output ./out

Generate with a concrete registry user:
  profilectl generate --profile profile.yaml --output ./out --registry-user alice

# Deployment

After generating with a concrete registry user:
  profilectl deploy --profile profile.yaml --output ./out --registry-user alice`,
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
				Usage:   "Output directory path for the generated artifacts",
			},
			&cli.StringFlag{
				Name:    "registry-user",
				Aliases: []string{"u"},
				Usage:   "Registry username for the image reference (default: placeholder)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			profilePath := cmd.String("profile")
			outputDir := cmd.String("output")
			registryUser := cmd.String("registry-user")
			if registryUser == "" {
				registryUser = imageref.Placeholder
			}

			p, err := loadProfile(cmd)
			if err != nil {
				slog.Error("failed to load profile", "error", err, "path", profilePath)
				return err
			}

			slog.Info("generating artifacts",
				slog.String("profile", p.Name),
				slog.String("output", outputDir),
			)

			artifacts, err := bundler.NewRenderer().Render(p, registryUser)
			if err != nil {
				slog.Error("artifact generation failed", "error", err)
				return err
			}

			out, err := bundler.NewWriter().Write(artifacts, outputDir)
			if err != nil {
				slog.Error("artifact write failed", "error", err)
				return err
			}

			slog.Info("artifacts generated",
				"files", len(out.Files),
				"size_bytes", out.Size,
				"duration_sec", out.Duration.Seconds(),
				"output_dir", outputDir,
			)

			printGenerateInstructions(cmd, p.Name, profilePath, outputDir, registryUser)
			return nil
		},
	}
}

// printGenerateInstructions prints user-friendly next steps.
func printGenerateInstructions(cmd *cli.Command, name, profilePath, outputDir, registryUser string) {
	w := cmd.Root().Writer

	fmt.Fprintf(w, "\nArtifacts for profile %q generated successfully!\n", name)
	fmt.Fprintf(w, "Output directory: %s\n", outputDir)

	if registryUser == imageref.Placeholder {
		fmt.Fprintf(w, "\nThe image repository still carries the %s placeholder.\n", imageref.Placeholder)
		fmt.Fprintf(w, "To deploy:\n")
		fmt.Fprintf(w, "  profilectl deploy --profile %s --output %s --registry-user <your-registry-user>\n",
			profilePath, outputDir)
		return
	}

	fmt.Fprintf(w, "\nTo deploy:\n")
	fmt.Fprintf(w, "  profilectl deploy --profile %s --output %s --registry-user %s\n",
		profilePath, outputDir, registryUser)
}
