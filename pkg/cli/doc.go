// Package cli implements the command-line interface for profilectl.
//
// # Overview
//
// profilectl turns a small declarative profile (base OS image, packages,
// version) into deployment artifacts and drives them onto a local
// Kubernetes cluster. The CLI provides the two-stage workflow: generating
// artifacts and running the deployment pipeline.
//
// # Commands
//
// generate - Generate deployment artifacts (Step 1):
//
//	profilectl generate --profile profile.yaml --output ./out
//	profilectl generate -p profile.yaml -o ./out --registry-user alice
//
// Renders a Dockerfile and a Helm chart from the profile. Without
// --registry-user the image repository carries the YOUR_REGISTRY_USERNAME
// placeholder.
//
// deploy - Run the deployment pipeline (Step 2):
//
//	profilectl deploy --profile profile.yaml --output ./out --registry-user alice
//	profilectl deploy -p profile.yaml -o ./out -u alice --yes --format json
//
// Checks required tools, confirms, ensures a minikube cluster, builds and
// pushes the image, installs the chart, and prints a verification summary.
// Stages run strictly in order with no automatic retries.
//
// # Global Flags
//
//	--debug     Enable debug logging
//	--log-json  Output logs in JSON format
//	--help, -h  Show command help
//	--version   Show version information
//
// # Exit Codes
//
//	0  Success, or deployment declined at the confirmation prompt
//	1  Validation or artifact generation failure
//	2  Required tool missing or not ready
//	3  Pipeline stage failure (cluster, build, push, install)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized
// packages:
//   - pkg/profile - Profile loading and validation
//   - pkg/bundler - Artifact rendering, writing, and patching
//   - pkg/deployer - Pipeline state machine and stage execution
//   - pkg/verifier - Post-install cluster summary
//   - pkg/serializer - Output formatting
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/kubeprofiles/profilectl/pkg/cli.version=1.0.0'"
package cli
