// Package verifier summarizes the deployed workload after a chart install.
//
// The summary is read-only and informational: presence or absence of the
// expected workload is reported to the operator, never used to drive further
// pipeline decisions.
package verifier

import (
	"context"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// PodStatus is the condensed state of one workload pod.
type PodStatus struct {
	Name  string `json:"name" yaml:"name"`
	Phase string `json:"phase" yaml:"phase"`
	Ready bool   `json:"ready" yaml:"ready"`
}

// Summary is the namespace-scoped deployment summary.
type Summary struct {
	Namespace       string      `json:"namespace" yaml:"namespace"`
	AppName         string      `json:"app" yaml:"app"`
	WorkloadPresent bool        `json:"workloadPresent" yaml:"workloadPresent"`
	Image           string      `json:"image,omitempty" yaml:"image,omitempty"`
	Pods            []PodStatus `json:"pods" yaml:"pods"`
	Services        []string    `json:"services" yaml:"services"`
	NetworkPolicies []string    `json:"networkPolicies" yaml:"networkPolicies"`
}

// Verifier queries cluster state for the installed resources.
type Verifier struct {
	client kubernetes.Interface
}

// New creates a verifier over the given client.
func New(client kubernetes.Interface) *Verifier {
	return &Verifier{client: client}
}

// Summarize lists the workload's deployment, pods, services and network
// policies in the target namespace.
func (v *Verifier) Summarize(ctx context.Context, namespace, appName string) (*Summary, error) {
	summary := &Summary{
		Namespace: namespace,
		AppName:   appName,
	}

	deployment, err := v.client.AppsV1().Deployments(namespace).Get(ctx, appName, metav1.GetOptions{})
	if err == nil {
		summary.WorkloadPresent = true
		for _, container := range deployment.Spec.Template.Spec.Containers {
			if container.Name == appName {
				summary.Image = container.Image
			}
		}
	}

	selector := fmt.Sprintf("app=%s", appName)
	pods, err := v.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	for _, pod := range pods.Items {
		summary.Pods = append(summary.Pods, PodStatus{
			Name:  pod.Name,
			Phase: string(pod.Status.Phase),
			Ready: podReady(&pod),
		})
	}

	services, err := v.client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services in %s: %w", namespace, err)
	}
	for _, svc := range services.Items {
		summary.Services = append(summary.Services, svc.Name)
	}

	policies, err := v.client.NetworkingV1().NetworkPolicies(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list network policies in %s: %w", namespace, err)
	}
	for _, policy := range policies.Items {
		summary.NetworkPolicies = append(summary.NetworkPolicies, policy.Name)
	}

	slog.Debug("deployment summarized",
		slog.String("namespace", namespace),
		slog.Bool("workload_present", summary.WorkloadPresent),
		slog.Int("pods", len(summary.Pods)),
		slog.Int("network_policies", len(summary.NetworkPolicies)),
	)

	return summary, nil
}

func podReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
