package bundler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
)

// Writer persists rendered artifacts below an output root. It creates the
// root and any intermediate directories, and only ever writes inside the
// root; pre-existing unrelated files are left alone.
type Writer struct{}

// NewWriter creates a writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists all artifacts and returns the written paths. I/O failures
// are fatal and carry the offending path verbatim.
func (w *Writer) Write(artifacts []Artifact, outputRoot string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if err := ensureDir(outputRoot); err != nil {
		return nil, err
	}

	for _, artifact := range artifacts {
		path := filepath.Join(outputRoot, artifact.Path)

		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return nil, pkgerrors.Newf(pkgerrors.ErrCodeIO,
				"cannot write %s: path is a directory", path)
		}
		if err := os.WriteFile(path, artifact.Content, 0644); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeIO,
				fmt.Sprintf("failed to write %s", path), err)
		}

		result.AddFile(path, int64(len(artifact.Content)))

		slog.Debug("artifact written",
			slog.String("artifact", artifact.Name),
			slog.String("path", path),
			slog.Int("size_bytes", len(artifact.Content)),
		)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// ensureDir creates dir (and parents) if needed. A pre-existing non-directory
// at the path is a fatal collision.
func ensureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return pkgerrors.Newf(pkgerrors.ErrCodeIO,
			"cannot create directory %s: path exists and is not a directory", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeIO,
			fmt.Sprintf("failed to create directory %s", dir), err)
	}
	return nil
}
