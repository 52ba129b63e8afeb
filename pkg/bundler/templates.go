package bundler

import (
	_ "embed"
)

//go:embed templates/dockerfile.tmpl
var dockerfileTemplate string

//go:embed templates/chart.yaml.tmpl
var chartTemplate string

//go:embed templates/values.yaml.tmpl
var valuesTemplate string

//go:embed templates/namespace.yaml.tmpl
var namespaceTemplate string

//go:embed templates/deployment.yaml.tmpl
var deploymentTemplate string

//go:embed templates/service.yaml.tmpl
var serviceTemplate string

//go:embed templates/networkpolicy.yaml.tmpl
var networkPolicyTemplate string

// GetTemplate returns the named template content.
func GetTemplate(name string) (string, bool) {
	templates := map[string]string{
		ArtifactBuildFile:     dockerfileTemplate,
		ArtifactChartMetadata: chartTemplate,
		ArtifactChartValues:   valuesTemplate,
		ArtifactNamespace:     namespaceTemplate,
		ArtifactDeployment:    deploymentTemplate,
		ArtifactService:       serviceTemplate,
		ArtifactNetworkPolicy: networkPolicyTemplate,
	}

	tmpl, ok := templates[name]
	return tmpl, ok
}
