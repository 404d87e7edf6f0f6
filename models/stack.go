package models

import "time"

// StackStatus is the aggregate operational status of a stack.
// It is always derived from the member services, never stored.
type StackStatus string

const (
	StackRunning  StackStatus = "running"
	StackDegraded StackStatus = "degraded"
	StackStopped  StackStatus = "stopped"
)

// ServiceState is the aggregate state of all containers backing a service.
type ServiceState string

const (
	ServiceRunning    ServiceState = "running"
	ServiceStopped    ServiceState = "stopped"
	ServiceRestarting ServiceState = "restarting"
	ServiceError      ServiceState = "error"
)

// OwnershipKind says how a stack's containers were grouped together.
type OwnershipKind string

const (
	// OwnedByProject groups containers sharing a compose project label.
	OwnedByProject OwnershipKind = "project"

	// Singleton is the fallback for containers without an ownership
	// label; each such container forms its own stack.
	Singleton OwnershipKind = "singleton"
)

// Ownership identifies the grouping that produced a stack. Modeling the
// fallback chain explicitly keeps it auditable instead of being implied by
// string presence.
type Ownership struct {
	// Kind is the grouping rule that applied.
	Kind OwnershipKind `json:"kind"`

	// Key is the grouping key: the project label value for
	// OwnedByProject, or the synthetic per-container key for Singleton.
	Key string `json:"key"`
}

// Service is a named role within a stack, potentially replicated across
// several containers. Derived on every read, never persisted.
type Service struct {
	// Name is the resolved service name, unique within its stack.
	Name string `json:"name"`

	// Image is the most recently observed non-empty image reference.
	Image string `json:"image"`

	// Replicas is the number of containers backing this service.
	Replicas int `json:"replicas"`

	// State is the rollup of all member container states.
	State ServiceState `json:"state"`

	// Ports are deduplicated "{host:}{container}/{proto}" strings,
	// sorted lexically for deterministic output.
	Ports []string `json:"ports,omitempty"`

	// LastEvent is the most recent non-empty engine status line.
	LastEvent string `json:"lastEvent,omitempty"`
}

// Stack is the operator-facing grouping of containers that originated from
// one deployment unit. Stacks are recomputed from container snapshots on
// every call; staleness is bounded only by how recently the engine was
// queried.
type Stack struct {
	// ID is the stack identifier, equal to the ownership key.
	ID string `json:"id"`

	// Name is the human display name derived from the ownership key.
	Name string `json:"name"`

	// Ownership records which grouping rule produced this stack.
	Ownership Ownership `json:"ownership"`

	// Path is a best-effort pointer to the underlying definition file
	// or working directory.
	Path string `json:"path,omitempty"`

	// Status is the aggregate status derived from the services.
	Status StackStatus `json:"status"`

	// ObservedAt is when the underlying snapshot was taken.
	ObservedAt time.Time `json:"observedAt"`

	// Services are the derived service views, sorted by name.
	Services []Service `json:"services"`

	// LastAction describes the most recent action applied through the
	// dispatcher, when one happened in this process.
	LastAction string `json:"lastAction,omitempty"`
}

// ServiceNames returns the names of all services in the stack.
func (s *Stack) ServiceNames() []string {
	names := make([]string, len(s.Services))
	for i, svc := range s.Services {
		names[i] = svc.Name
	}
	return names
}
