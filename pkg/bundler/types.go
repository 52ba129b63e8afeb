package bundler

import (
	"path/filepath"
	"time"
)

// Logical artifact names. These double as template names: every artifact is
// rendered from the template of the same name.
const (
	ArtifactBuildFile     = "build-file"
	ArtifactChartMetadata = "chart-metadata"
	ArtifactChartValues   = "chart-values"
	ArtifactNamespace     = "manifest-namespace"
	ArtifactDeployment    = "manifest-deployment"
	ArtifactService       = "manifest-service"
	ArtifactNetworkPolicy = "manifest-networkpolicy"
)

// ChartDir is the chart directory relative to the output root. The deployment
// pipeline hands this directory to the chart installer.
const ChartDir = "helm"

// Artifact is one rendered output file, not yet persisted.
type Artifact struct {
	// Name is the logical artifact name (e.g. "chart-values").
	Name string

	// Path is the target path relative to the output root.
	Path string

	// Content is the rendered text.
	Content []byte
}

// Result tracks what a write produced.
type Result struct {
	// Files lists the written paths in write order.
	Files []string

	// Size is the total number of bytes written.
	Size int64

	// Duration is the wall time of the write.
	Duration time.Duration
}

// AddFile records a written file and its size.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// ValuesPath returns the on-disk path of the chart values artifact below the
// given output root.
func ValuesPath(outputRoot string) string {
	return filepath.Join(outputRoot, ChartDir, "values.yaml")
}
