// Package imageref derives the canonical image reference shared by every
// generated artifact. The build file, the chart values and the runtime
// verification all embed the same repository/tag pair, derived exactly once
// from the profile plus the registry username.
package imageref

import (
	"regexp"

	"github.com/distribution/reference"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/profile"
)

// tagRegexp anchors the reference tag grammar. reference.TagRegexp itself is
// unanchored and would accept any string containing a tag-like substring.
var tagRegexp = regexp.MustCompile(`^(?:` + reference.TagRegexp.String() + `)$`)

// Placeholder is the well-known marker substituted for the registry username
// when it is not yet known at render time. It is chosen to be unambiguous for
// a human editing the artifact and easy to find for the value patcher.
const Placeholder = "YOUR_REGISTRY_USERNAME"

// Reference is the single-source image reference.
type Reference struct {
	// Repository is "{registryUser}/{appName}" (or the placeholder user).
	Repository string

	// Tag is "{appName}-{version}".
	Tag string
}

// String returns the full "repository:tag" reference.
func (r Reference) String() string {
	return r.Repository + ":" + r.Tag
}

// IsPlaceholder reports whether the reference still embeds the placeholder
// username instead of a real one.
func (r Reference) IsPlaceholder() bool {
	user, _, ok := splitRepository(r.Repository)
	return ok && user == Placeholder
}

// Derive builds the canonical reference for a profile. An empty registryUser
// yields a placeholder reference suitable for later patching.
func Derive(p *profile.Profile, registryUser string) (Reference, error) {
	user := registryUser
	if user == "" {
		user = Placeholder
	}

	ref := Reference{
		Repository: user + "/" + p.Name,
		Tag:        p.Name + "-" + p.Version,
	}

	if !tagRegexp.MatchString(ref.Tag) {
		return Reference{}, pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"derived tag %q is not a valid image tag", ref.Tag)
	}
	// The placeholder is deliberately not a valid repository component, so
	// only patched references are checked against the full grammar.
	if user != Placeholder {
		if _, err := reference.ParseNormalizedNamed(ref.Repository); err != nil {
			return Reference{}, pkgerrors.Wrap(pkgerrors.ErrCodeValidation,
				"derived repository "+ref.Repository+" is not a valid image name", err)
		}
	}

	return ref, nil
}

func splitRepository(repo string) (user, name string, ok bool) {
	for i := 0; i < len(repo); i++ {
		if repo[i] == '/' {
			return repo[:i], repo[i+1:], true
		}
	}
	return "", "", false
}
