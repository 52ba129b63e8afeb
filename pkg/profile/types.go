// Package profile defines the declarative workload profile and its
// validation rules. A profile is loaded once at the start of a run and is
// immutable afterwards; every generated artifact derives from it.
package profile

const (
	// DirectionIngress allows traffic into the workload.
	DirectionIngress Direction = "ingress"

	// DirectionEgress allows traffic out of the workload.
	DirectionEgress Direction = "egress"
)

// Direction identifies the traffic direction of a network rule.
type Direction string

// Profile is the declarative description of the desired container image and
// workload.
type Profile struct {
	// Name identifies the profile. It doubles as the app name, the default
	// namespace and the image repository path component.
	Name string `yaml:"name"`

	// BaseImage is the base distribution (e.g. "ubuntu").
	BaseImage string `yaml:"baseImage"`

	// BaseVersion is the base distribution version (e.g. "22.04").
	BaseVersion string `yaml:"baseVersion"`

	// Packages is the ordered list of packages to install into the image.
	Packages []string `yaml:"packages"`

	// Version is the profile version tag (e.g. "v1.0"). It becomes part of
	// the canonical image reference.
	Version string `yaml:"version"`

	// NamespaceOverride optionally overrides the target namespace.
	NamespaceOverride string `yaml:"namespace,omitempty"`

	// Network optionally declares network policy rules for the workload.
	Network *NetworkSpec `yaml:"network,omitempty"`
}

// NetworkSpec declares the network policy posture of the workload.
type NetworkSpec struct {
	DefaultDenyIngress bool          `yaml:"defaultDenyIngress"`
	DefaultDenyEgress  bool          `yaml:"defaultDenyEgress"`
	Rules              []NetworkRule `yaml:"rules,omitempty"`
}

// NetworkRule is one allow exception to the default-deny posture.
type NetworkRule struct {
	Direction Direction `yaml:"direction"`

	// From names the peer namespace for ingress rules.
	From *Peer `yaml:"from,omitempty"`

	// To names the peer namespace for egress rules.
	To *Peer `yaml:"to,omitempty"`

	Protocol string `yaml:"protocol"`
	Port     int    `yaml:"port"`
}

// Peer selects the remote side of a network rule by namespace.
type Peer struct {
	Namespace string `yaml:"namespace"`
}

// Namespace returns the target namespace: the override when set, the profile
// name otherwise.
func (p *Profile) Namespace() string {
	if p.NamespaceOverride != "" {
		return p.NamespaceOverride
	}
	return p.Name
}

// BaseReference returns the base image reference (e.g. "ubuntu:22.04").
func (p *Profile) BaseReference() string {
	return p.BaseImage + ":" + p.BaseVersion
}
