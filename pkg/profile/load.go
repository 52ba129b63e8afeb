package profile

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/distribution/reference"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
)

// knownBases lists the apt-based distributions the generated Dockerfile
// supports. The build file installs packages with apt-get, so anything else
// would produce an image that fails at build time.
var knownBases = []string{"ubuntu", "debian"}

// nameRegexp constrains profile names to DNS-1123 labels. The name is reused
// as the namespace and as the image repository path component, so it must be
// valid in both contexts.
var nameRegexp = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]{0,61}[a-z0-9])?$`)

// tagRegexp anchors the reference tag grammar. reference.TagRegexp itself is
// unanchored and would accept any string containing a tag-like substring.
var tagRegexp = regexp.MustCompile(`^(?:` + reference.TagRegexp.String() + `)$`)

// Load reads and validates a profile from the given path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeValidation,
			fmt.Sprintf("failed to read profile %s", path), err)
	}
	return Parse(data)
}

// Parse decodes and validates a profile from raw YAML. Unknown fields are
// rejected so that typos in optional keys surface instead of being dropped.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeValidation, "failed to parse profile", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the profile invariants. All violations are reported as
// validation errors; the first one found wins.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "profile name is required")
	}
	if !nameRegexp.MatchString(p.Name) {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"profile name %q is not a valid DNS label", p.Name)
	}

	if p.BaseImage == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "baseImage is required")
	}
	if err := validateBaseImage(p.BaseImage); err != nil {
		return err
	}
	if p.BaseVersion == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "baseVersion is required")
	}
	if !tagRegexp.MatchString(p.BaseVersion) {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"baseVersion %q is not usable as an image tag", p.BaseVersion)
	}

	if len(p.Packages) == 0 {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "packages list must not be empty")
	}
	for _, pkg := range p.Packages {
		if pkg == "" || strings.ContainsAny(pkg, " \t\n") {
			return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
				"package name %q is not a valid apt package token", pkg)
		}
	}

	if p.Version == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "version is required")
	}
	// The version becomes the suffix of the image tag, so the whole derived
	// tag must satisfy the reference grammar.
	if !tagRegexp.MatchString(p.Name + "-" + p.Version) {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"version %q contains characters unsafe for an image tag", p.Version)
	}

	if p.NamespaceOverride != "" && !nameRegexp.MatchString(p.NamespaceOverride) {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"namespace %q is not a valid DNS label", p.NamespaceOverride)
	}

	if p.Network != nil {
		if err := p.Network.validate(); err != nil {
			return err
		}
	}

	return nil
}

// validateBaseImage checks the base against the supported apt-based
// distributions and suggests the closest match for near misses.
func validateBaseImage(base string) error {
	lowered := strings.ToLower(base)
	closest := ""
	closestDist := -1
	for _, known := range knownBases {
		if lowered == known {
			return nil
		}
		d := levenshtein.ComputeDistance(lowered, known)
		if closestDist < 0 || d < closestDist {
			closest, closestDist = known, d
		}
	}
	if closestDist >= 0 && closestDist <= 2 {
		return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"unsupported baseImage %q (did you mean %q?), supported: %v",
			base, closest, knownBases)
	}
	return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
		"unsupported baseImage %q, supported: %v", base, knownBases)
}

func (n *NetworkSpec) validate() error {
	for i, rule := range n.Rules {
		switch rule.Direction {
		case DirectionIngress:
			if rule.From == nil || rule.From.Namespace == "" {
				return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
					"network rule %d: ingress rules require from.namespace", i)
			}
		case DirectionEgress:
			if rule.To == nil || rule.To.Namespace == "" {
				return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
					"network rule %d: egress rules require to.namespace", i)
			}
		default:
			return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
				"network rule %d: unknown direction %q", i, rule.Direction)
		}

		if rule.Protocol != "TCP" && rule.Protocol != "UDP" {
			return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
				"network rule %d: protocol must be TCP or UDP, got %q", i, rule.Protocol)
		}
		if rule.Port < 1 || rule.Port > 65535 {
			return pkgerrors.Newf(pkgerrors.ErrCodeValidation,
				"network rule %d: port %d out of range", i, rule.Port)
		}
	}
	return nil
}
