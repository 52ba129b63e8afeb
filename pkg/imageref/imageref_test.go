package imageref

import (
	"testing"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:        "webapp",
		BaseImage:   "ubuntu",
		BaseVersion: "22.04",
		Packages:    []string{"curl", "jq", "git"},
		Version:     "v1.0",
	}
}

func TestDerive_WithUser(t *testing.T) {
	ref, err := Derive(testProfile(), "alice")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if ref.Repository != "alice/webapp" {
		t.Errorf("Repository = %q, want alice/webapp", ref.Repository)
	}
	if ref.Tag != "webapp-v1.0" {
		t.Errorf("Tag = %q, want webapp-v1.0", ref.Tag)
	}
	if got := ref.String(); got != "alice/webapp:webapp-v1.0" {
		t.Errorf("String() = %q, want alice/webapp:webapp-v1.0", got)
	}
	if ref.IsPlaceholder() {
		t.Error("IsPlaceholder() = true for a real username")
	}
}

func TestDerive_Placeholder(t *testing.T) {
	ref, err := Derive(testProfile(), "")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if ref.Repository != Placeholder+"/webapp" {
		t.Errorf("Repository = %q, want placeholder user", ref.Repository)
	}
	if !ref.IsPlaceholder() {
		t.Error("IsPlaceholder() = false for the placeholder user")
	}
}

func TestDerive_Deterministic(t *testing.T) {
	a, err := Derive(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Derive(testProfile(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("Derive() not deterministic: %v vs %v", a, b)
	}
}

func TestDerive_InvalidUser(t *testing.T) {
	_, err := Derive(testProfile(), "Alice In Chains")
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation) {
		t.Fatalf("Derive() error = %v, want validation error", err)
	}
}

func TestDerive_UnsafeVersion(t *testing.T) {
	// The tag grammar must reject the whole tag, not just fail to find a
	// tag-shaped substring in it.
	p := testProfile()
	p.Version = "v1.0 beta"

	_, err := Derive(p, "alice")
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation) {
		t.Fatalf("Derive() error = %v, want validation error for unsafe tag", err)
	}
}
