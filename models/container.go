package models

// ContainerState is the engine-reported lifecycle state of a container.
type ContainerState string

const (
	StateRunning    ContainerState = "running"
	StateRestarting ContainerState = "restarting"
	StatePaused     ContainerState = "paused"
	StateCreated    ContainerState = "created"
	StateExited     ContainerState = "exited"
	StateDead       ContainerState = "dead"
	StateRemoving   ContainerState = "removing"
	StateUnknown    ContainerState = "unknown"
)

// ParseContainerState maps an engine state string onto the fixed state
// vocabulary. Anything outside the vocabulary becomes StateUnknown.
func ParseContainerState(s string) ContainerState {
	switch ContainerState(s) {
	case StateRunning, StateRestarting, StatePaused, StateCreated,
		StateExited, StateDead, StateRemoving:
		return ContainerState(s)
	default:
		return StateUnknown
	}
}

// ContainerRecord is an immutable snapshot of one container as reported by
// the engine. Records are re-fetched on every read and never cached across
// calls; the engine alone creates and destroys the underlying containers.
type ContainerRecord struct {
	// ID is the opaque engine-assigned container identifier.
	ID string `json:"id"`

	// Names are the display names the engine reports (may carry a
	// leading slash, may be empty).
	Names []string `json:"names"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`

	// State is the lifecycle state from the fixed vocabulary.
	State ContainerState `json:"state"`

	// Status is the engine's freeform status line (e.g. "Up 2 hours").
	Status string `json:"status"`

	// Labels are the container's key-value labels.
	Labels map[string]string `json:"labels,omitempty"`

	// Ports are the declared port mappings.
	Ports []Port `json:"ports,omitempty"`
}

// Port is one declared port mapping on a container.
type Port struct {
	// HostPort is the published host port, zero when unpublished.
	HostPort int `json:"hostPort,omitempty"`

	// ContainerPort is the port inside the container.
	ContainerPort int `json:"containerPort"`

	// Protocol is the transport, e.g. "tcp" or "udp".
	Protocol string `json:"protocol"`
}

// Name returns the primary display name without the engine's leading
// slash, falling back to a truncated id when no name is set.
func (c ContainerRecord) Name() string {
	for _, n := range c.Names {
		if n == "" || n == "/" {
			continue
		}
		if n[0] == '/' {
			return n[1:]
		}
		return n
	}
	return TruncateID(c.ID)
}

// TruncateID shortens an engine container id for display.
func TruncateID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
