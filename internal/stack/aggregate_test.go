package stack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/models"
)

func record(id, name, project, service string, state models.ContainerState) models.ContainerRecord {
	labels := map[string]string{}
	if project != "" {
		labels[LabelProject] = project
	}
	if service != "" {
		labels[LabelService] = service
	}
	return models.ContainerRecord{
		ID:     id,
		Names:  []string{"/" + name},
		Image:  "registry.local:5000/" + name + ":v1",
		State:  state,
		Status: "Up 2 hours",
		Labels: labels,
	}
}

func TestAggregateDegradedProjectScenario(t *testing.T) {
	now := time.Now()
	records := []models.ContainerRecord{
		record("a1", "papem-core-api-1", "papem-core", "api", models.StateRunning),
		record("a2", "papem-core-api-2", "papem-core", "api", models.StateRunning),
		record("p1", "papem-core-proxy-1", "papem-core", "proxy", models.StateExited),
	}

	stacks := Aggregate(records, now)
	require.Len(t, stacks, 1)

	st := stacks[0]
	assert.Equal(t, "papem-core", st.ID)
	assert.Equal(t, "Papem Core", st.Name)
	assert.Equal(t, models.OwnedByProject, st.Ownership.Kind)
	assert.Equal(t, models.StackDegraded, st.Status)
	assert.Equal(t, now, st.ObservedAt)

	require.Len(t, st.Services, 2)
	assert.Equal(t, "api", st.Services[0].Name)
	assert.Equal(t, 2, st.Services[0].Replicas)
	assert.Equal(t, models.ServiceRunning, st.Services[0].State)
	assert.Equal(t, "proxy", st.Services[1].Name)
	assert.Equal(t, 1, st.Services[1].Replicas)
	assert.Equal(t, models.ServiceStopped, st.Services[1].State)
}

func TestAggregatePartitionsEveryContainerOnce(t *testing.T) {
	records := []models.ContainerRecord{
		record("a1", "core-api-1", "core", "api", models.StateRunning),
		record("b1", "core-db-1", "core", "db", models.StateRunning),
		record("s1", "lonely", "", "", models.StateExited),
		record("s2", "drifter", "", "", models.StateRunning),
	}

	stacks := Aggregate(records, time.Now())

	total := 0
	for _, st := range stacks {
		seen := map[string]bool{}
		for _, svc := range st.Services {
			require.False(t, seen[svc.Name], "duplicate service %q in stack %q", svc.Name, st.ID)
			seen[svc.Name] = true
			total += svc.Replicas
		}
	}
	assert.Equal(t, len(records), total)

	// Unlabeled containers never merge with each other.
	require.Len(t, stacks, 3)
}

func TestAggregateIsDeterministic(t *testing.T) {
	now := time.Now()
	records := []models.ContainerRecord{
		record("s2", "zeta", "", "", models.StateRunning),
		record("a1", "core-api-1", "core", "api", models.StateRunning),
		record("s1", "alpha", "", "", models.StateExited),
	}

	first := Aggregate(records, now)
	second := Aggregate(records, now)
	assert.Equal(t, first, second)

	// Sorted by display name.
	assert.Equal(t, []string{"Alpha", "Core", "Zeta"},
		[]string{first[0].Name, first[1].Name, first[2].Name})
}

func TestPortFormattingSortedAndDeduplicated(t *testing.T) {
	rec := record("a1", "core-api-1", "core", "api", models.StateRunning)
	rec.Ports = []models.Port{
		{HostPort: 0, ContainerPort: 9090, Protocol: "tcp"},
		{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"},
		{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"},
	}

	stacks := Aggregate([]models.ContainerRecord{rec}, time.Now())
	require.Len(t, stacks, 1)
	require.Len(t, stacks[0].Services, 1)
	assert.Equal(t, []string{"8080:80/tcp", "9090/tcp"}, stacks[0].Services[0].Ports)
}

func TestServiceState(t *testing.T) {
	tests := []struct {
		name   string
		states []models.ContainerState
		want   models.ServiceState
	}{
		{"all running", []models.ContainerState{models.StateRunning, models.StateRunning}, models.ServiceRunning},
		{"all stopped", []models.ContainerState{models.StateExited, models.StateCreated, models.StateDead}, models.ServiceStopped},
		{"any restarting", []models.ContainerState{models.StateRunning, models.StateRestarting}, models.ServiceRestarting},
		{"mixed", []models.ContainerState{models.StateRunning, models.StateExited}, models.ServiceError},
		{"paused degrades", []models.ContainerState{models.StatePaused}, models.ServiceError},
		{"empty", nil, models.ServiceStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceState(tt.states))
		})
	}
}

func TestStackStatus(t *testing.T) {
	tests := []struct {
		name     string
		services []models.Service
		want     models.StackStatus
	}{
		{"empty stack", nil, models.StackStopped},
		{
			"all running",
			[]models.Service{{State: models.ServiceRunning}, {State: models.ServiceRunning}},
			models.StackRunning,
		},
		{
			"all stopped",
			[]models.Service{{State: models.ServiceStopped}},
			models.StackStopped,
		},
		{
			"mixed",
			[]models.Service{{State: models.ServiceRunning}, {State: models.ServiceStopped}},
			models.StackDegraded,
		},
		{
			"restarting degrades",
			[]models.Service{{State: models.ServiceRunning}, {State: models.ServiceRestarting}},
			models.StackDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StackStatus(tt.services))
		})
	}
}

func TestResolveServiceNameFallbackChain(t *testing.T) {
	labeled := record("a1", "core-api-1", "core", "api", models.StateRunning)
	assert.Equal(t, "api", ResolveServiceName(labeled))

	named := models.ContainerRecord{ID: "bbbb2222cccc3333", Names: []string{"/standalone box"}}
	assert.Equal(t, "standalone-box", ResolveServiceName(named))

	anonymous := models.ContainerRecord{ID: "bbbb2222cccc3333dddd"}
	assert.Equal(t, "bbbb2222cccc", ResolveServiceName(anonymous))
}

func TestResolvePathFallbackChain(t *testing.T) {
	withConfig := record("a1", "core-api-1", "core", "api", models.StateRunning)
	withConfig.Labels[LabelConfigFiles] = "/srv/core/compose.yaml"
	withDir := record("a2", "core-db-1", "core", "db", models.StateRunning)
	withDir.Labels[LabelWorkingDir] = "/srv/core"

	stacks := Aggregate([]models.ContainerRecord{withDir, withConfig}, time.Now())
	require.Len(t, stacks, 1)
	assert.Equal(t, "/srv/core/compose.yaml", stacks[0].Path)

	bare := record("s1", "lonely", "", "", models.StateRunning)
	stacks = Aggregate([]models.ContainerRecord{bare}, time.Now())
	require.Len(t, stacks, 1)
	assert.Equal(t, "lonely", stacks[0].Path)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Papem Core", DisplayName("papem-core"))
	assert.Equal(t, "My App Stack", DisplayName("my_app-stack"))
	assert.Equal(t, "Solo", DisplayName("solo"))
	assert.Equal(t, "Double Dash", DisplayName("double--dash"))
}
