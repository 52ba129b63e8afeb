// Package defaults provides centralized configuration constants for
// profilectl.
//
// Timeouts and chart defaults live here so the bundler, the tool checker,
// and the deployment pipeline agree on one value without importing each
// other.
package defaults

import "time"

const (
	// ProbeTimeout bounds a single external tool probe (version query or
	// readiness check). Probes are read-only; a slow probe means a broken
	// tool, not a busy one.
	ProbeTimeout = 10 * time.Second

	// PodReadyTimeout bounds the post-install pod readiness wait. Exceeding
	// it is reported as a warning, not a failure.
	PodReadyTimeout = 120 * time.Second

	// ReplicaCount is the replica count written into generated chart values.
	ReplicaCount = 1

	// ServicePort is the service port written into generated chart values.
	ServicePort = 80
)
