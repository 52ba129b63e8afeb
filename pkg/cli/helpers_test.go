package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kubeprofiles/profilectl/pkg/deployer"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
)

func TestPrintFailure_StageError(t *testing.T) {
	err := &deployer.StageError{
		Stage:  deployer.StageBuildImage,
		Output: "step 4/7: no space left on device",
		Err:    pkgerrors.New(pkgerrors.ErrCodeBuild, "docker build failed"),
	}

	var buf bytes.Buffer
	PrintFailure(&buf, err)
	out := buf.String()

	if !strings.Contains(out, "cause=BUILD_FAILED stage=build-image") {
		t.Errorf("expected machine-parsable cause line, got:\n%s", out)
	}
	if !strings.Contains(out, "no space left on device") {
		t.Errorf("expected captured output, got:\n%s", out)
	}
	if !strings.Contains(out, "docker build failed") {
		t.Errorf("expected human detail, got:\n%s", out)
	}
}

func TestPrintFailure_PlainError(t *testing.T) {
	var buf bytes.Buffer
	PrintFailure(&buf, pkgerrors.New(pkgerrors.ErrCodeValidation, "name must be a DNS label"))
	out := buf.String()

	if !strings.Contains(out, "cause=VALIDATION_ERROR") {
		t.Errorf("expected cause line, got:\n%s", out)
	}
	if strings.Contains(out, "stage=") {
		t.Errorf("plain errors have no stage, got:\n%s", out)
	}
}
