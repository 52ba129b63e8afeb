package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	outputRoot := filepath.Join(dir, "generated")

	artifacts, err := NewRenderer().Render(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	result, err := NewWriter().Write(artifacts, outputRoot)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(result.Files) != len(artifacts) {
		t.Errorf("len(Files) = %d, want %d", len(result.Files), len(artifacts))
	}
	if result.Size == 0 {
		t.Error("Size should be non-zero")
	}

	for _, a := range artifacts {
		path := filepath.Join(outputRoot, a.Path)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("artifact %s not written: %v", a.Name, err)
		}
		if string(content) != string(a.Content) {
			t.Errorf("artifact %s content differs on disk", a.Name)
		}
	}

	if got := ValuesPath(outputRoot); got != filepath.Join(outputRoot, "helm", "values.yaml") {
		t.Errorf("ValuesPath() = %q", got)
	}
}

func TestWrite_PreservesUnrelatedFiles(t *testing.T) {
	outputRoot := t.TempDir()
	unrelated := filepath.Join(outputRoot, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	artifacts, err := NewRenderer().Render(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewWriter().Write(artifacts, outputRoot); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(unrelated)
	if err != nil || string(content) != "keep me" {
		t.Errorf("unrelated file was touched: content=%q err=%v", content, err)
	}
}

func TestWrite_PathCollision(t *testing.T) {
	outputRoot := t.TempDir()
	// A directory where the Dockerfile should go.
	if err := os.MkdirAll(filepath.Join(outputRoot, "Dockerfile"), 0755); err != nil {
		t.Fatal(err)
	}

	artifacts, err := NewRenderer().Render(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewWriter().Write(artifacts, outputRoot)
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeIO) {
		t.Fatalf("Write() error = %v, want IO error", err)
	}
	if !strings.Contains(err.Error(), "Dockerfile") {
		t.Errorf("error %q should name the offending path", err)
	}
}

func TestWrite_RootCollision(t *testing.T) {
	dir := t.TempDir()
	outputRoot := filepath.Join(dir, "generated")
	if err := os.WriteFile(outputRoot, []byte("file"), 0644); err != nil {
		t.Fatal(err)
	}

	artifacts, err := NewRenderer().Render(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewWriter().Write(artifacts, outputRoot)
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeIO) {
		t.Fatalf("Write() error = %v, want IO error", err)
	}
}
