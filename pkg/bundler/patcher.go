package bundler

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/imageref"
)

// Patch injects the registry username into the already-written chart values
// artifact by replacing every placeholder occurrence.
//
// A values file without the placeholder normally means renderer/patcher drift
// and is fatal: silently keeping the placeholder would deploy a broken image
// reference. The one exception is a re-run after a successful patch with the
// same username, which is a no-op.
func Patch(valuesPath, registryUser string) error {
	if registryUser == "" {
		return pkgerrors.New(pkgerrors.ErrCodePatch, "registry username must not be empty")
	}

	content, err := os.ReadFile(valuesPath)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeIO,
			fmt.Sprintf("failed to read %s", valuesPath), err)
	}

	placeholder := []byte(imageref.Placeholder)
	if !bytes.Contains(content, placeholder) {
		if bytes.Contains(content, []byte(registryUser+"/")) {
			slog.Debug("values already patched, skipping",
				slog.String("path", valuesPath),
				slog.String("user", registryUser),
			)
			return nil
		}
		return pkgerrors.Newf(pkgerrors.ErrCodePatch,
			"placeholder %s not found in %s", imageref.Placeholder, valuesPath)
	}

	patched := bytes.ReplaceAll(content, placeholder, []byte(registryUser))
	if err := os.WriteFile(valuesPath, patched, 0644); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeIO,
			fmt.Sprintf("failed to write %s", valuesPath), err)
	}

	slog.Debug("values patched",
		slog.String("path", valuesPath),
		slog.String("user", registryUser),
	)
	return nil
}
