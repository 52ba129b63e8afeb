package bundler

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/kubeprofiles/profilectl/pkg/defaults"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/imageref"
	"github.com/kubeprofiles/profilectl/pkg/profile"
)

// Renderer turns a validated profile into the fixed set of deployment
// artifacts. Rendering is deterministic: identical inputs produce
// byte-identical artifacts, in a fixed order.
type Renderer struct {
	templateGetter func(name string) (string, bool)
}

// NewRenderer creates a renderer backed by the embedded templates.
func NewRenderer() *Renderer {
	return &Renderer{templateGetter: GetTemplate}
}

// policyRule is one materialized network rule for template consumption.
type policyRule struct {
	PeerNamespace string
	Protocol      string
	Port          int
}

// templateData is the typed substitution contract shared by every template.
// All image reference fields come from one imageref.Reference, which is what
// guarantees cross-artifact consistency.
type templateData struct {
	Name      string
	Namespace string
	Version   string

	BaseImage string
	Packages  string

	Repository string
	Tag        string

	ReplicaCount int
	ServicePort  int

	NetworkPolicyEnabled bool
	PolicyTypes          []string
	IngressRules         []policyRule
	EgressRules          []policyRule
}

// Render produces every artifact for the profile. An empty registryUser
// renders the image repository with the placeholder token so a later patch
// (or a human) has an unambiguous marker to replace.
func (r *Renderer) Render(p *profile.Profile, registryUser string) ([]Artifact, error) {
	ref, err := imageref.Derive(p, registryUser)
	if err != nil {
		return nil, err
	}

	data := buildTemplateData(p, ref)

	specs := []struct {
		name string
		path string
	}{
		{ArtifactBuildFile, "Dockerfile"},
		{ArtifactChartMetadata, filepath.Join(ChartDir, "Chart.yaml")},
		{ArtifactChartValues, filepath.Join(ChartDir, "values.yaml")},
		{ArtifactNamespace, filepath.Join(ChartDir, "templates", "namespace.yaml")},
		{ArtifactDeployment, filepath.Join(ChartDir, "templates", "deployment.yaml")},
		{ArtifactService, filepath.Join(ChartDir, "templates", "service.yaml")},
		{ArtifactNetworkPolicy, filepath.Join(ChartDir, "templates", "networkpolicy.yaml")},
	}

	artifacts := make([]Artifact, 0, len(specs))
	for _, spec := range specs {
		content, err := r.render(spec.name, data)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{
			Name:    spec.name,
			Path:    spec.path,
			Content: []byte(content),
		})
	}

	slog.Debug("artifacts rendered",
		slog.String("profile", p.Name),
		slog.String("image", ref.String()),
		slog.Int("count", len(artifacts)),
	)

	return artifacts, nil
}

// render executes one named template. Helm-facing templates keep their
// {{ .Values.* }} actions literal, so Go substitutions use [[ ]] delimiters.
func (r *Renderer) render(name string, data *templateData) (string, error) {
	tmplContent, ok := r.templateGetter(name)
	if !ok {
		return "", pkgerrors.Newf(pkgerrors.ErrCodeTemplate, "template %s not found", name)
	}

	tmpl, err := template.New(name).Delims("[[", "]]").Parse(tmplContent)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrCodeTemplate, "failed to parse template "+name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrCodeTemplate, "failed to execute template "+name, err)
	}

	return buf.String(), nil
}

func buildTemplateData(p *profile.Profile, ref imageref.Reference) *templateData {
	data := &templateData{
		Name:         p.Name,
		Namespace:    p.Namespace(),
		Version:      p.Version,
		BaseImage:    p.BaseReference(),
		Packages:     strings.Join(p.Packages, " "),
		Repository:   ref.Repository,
		Tag:          ref.Tag,
		ReplicaCount: defaults.ReplicaCount,
		ServicePort:  defaults.ServicePort,
	}

	if p.Network == nil {
		return data
	}

	data.NetworkPolicyEnabled = true
	if p.Network.DefaultDenyIngress {
		data.PolicyTypes = append(data.PolicyTypes, "Ingress")
	}
	if p.Network.DefaultDenyEgress {
		data.PolicyTypes = append(data.PolicyTypes, "Egress")
	}

	for _, rule := range p.Network.Rules {
		switch rule.Direction {
		case profile.DirectionIngress:
			data.IngressRules = append(data.IngressRules, policyRule{
				PeerNamespace: rule.From.Namespace,
				Protocol:      rule.Protocol,
				Port:          rule.Port,
			})
		case profile.DirectionEgress:
			data.EgressRules = append(data.EgressRules, policyRule{
				PeerNamespace: rule.To.Namespace,
				Protocol:      rule.Protocol,
				Port:          rule.Port,
			})
		}
	}

	return data
}
