// Package bundler renders, persists and patches the deployment artifacts
// derived from a profile.
//
// # Artifacts
//
// One render produces a fixed artifact set below the output root:
//   - Dockerfile: the container build file
//   - helm/Chart.yaml: chart metadata
//   - helm/values.yaml: chart values (image reference, namespace, service)
//   - helm/templates/*.yaml: namespace, deployment, service, network policy
//
// # Consistency
//
// Every artifact that embeds an image reference receives the identical
// repository/tag pair, derived once by pkg/imageref. The chart values file is
// the only artifact mutated after the write: Patch replaces the registry
// username placeholder exactly once, and re-running with the same username is
// a no-op.
//
// # Rendering
//
// Templates are embedded at build time and executed with text/template using
// [[ ]] delimiters, so Helm's own {{ .Values.* }} actions pass through
// literally into the chart.
package bundler
