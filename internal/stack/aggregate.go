// Package stack derives operator-facing stack views from raw container
// snapshots. Everything here is pure and deterministic: the same snapshot
// always yields the same stacks, and no state survives between calls.
package stack

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fleetdeck/fleetdeck/models"
)

// Compose labels the engine attaches to containers created from a project.
const (
	LabelProject     = "com.docker.compose.project"
	LabelService     = "com.docker.compose.service"
	LabelConfigFiles = "com.docker.compose.project.config_files"
	LabelWorkingDir  = "com.docker.compose.project.working_dir"
)

// Aggregate groups a container snapshot into stacks. Every container lands
// in exactly one stack: containers sharing a project label merge, unlabeled
// containers each form their own singleton. Stacks come back sorted by
// display name.
func Aggregate(records []models.ContainerRecord, observedAt time.Time) []models.Stack {
	groups := make(map[string][]models.ContainerRecord)
	ownerships := make(map[string]models.Ownership)

	for _, rec := range records {
		owner := ResolveOwnership(rec)
		groups[owner.Key] = append(groups[owner.Key], rec)
		ownerships[owner.Key] = owner
	}

	stacks := make([]models.Stack, 0, len(groups))
	for key, members := range groups {
		stacks = append(stacks, buildStack(ownerships[key], members, observedAt))
	}

	sort.Slice(stacks, func(i, j int) bool {
		if stacks[i].Name != stacks[j].Name {
			return stacks[i].Name < stacks[j].Name
		}
		return stacks[i].ID < stacks[j].ID
	})
	return stacks
}

// ResolveOwnership decides which stack a container belongs to: the compose
// project label when present, otherwise a synthetic singleton key derived
// from the container's own identity so ungrouped containers never merge.
func ResolveOwnership(rec models.ContainerRecord) models.Ownership {
	if project := rec.Labels[LabelProject]; project != "" {
		return models.Ownership{Kind: models.OwnedByProject, Key: project}
	}
	return models.Ownership{Kind: models.Singleton, Key: sanitizeName(rec.Name())}
}

// ResolveServiceName names the logical role a container plays within its
// stack: the compose service label, else the sanitized display name, else
// a truncated id.
func ResolveServiceName(rec models.ContainerRecord) string {
	if svc := rec.Labels[LabelService]; svc != "" {
		return svc
	}
	if name := sanitizeName(rec.Name()); name != "" {
		return name
	}
	return models.TruncateID(rec.ID)
}

func buildStack(owner models.Ownership, members []models.ContainerRecord, observedAt time.Time) models.Stack {
	byService := make(map[string][]models.ContainerRecord)
	for _, rec := range members {
		name := ResolveServiceName(rec)
		byService[name] = append(byService[name], rec)
	}

	services := make([]models.Service, 0, len(byService))
	for name, recs := range byService {
		services = append(services, buildService(name, recs))
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	return models.Stack{
		ID:         owner.Key,
		Name:       DisplayName(owner.Key),
		Ownership:  owner,
		Path:       resolvePath(members),
		Status:     StackStatus(services),
		ObservedAt: observedAt,
		Services:   services,
	}
}

func buildService(name string, recs []models.ContainerRecord) models.Service {
	svc := models.Service{Name: name, Replicas: len(recs)}

	states := make([]models.ContainerState, 0, len(recs))
	portSet := make(map[string]struct{})
	for _, rec := range recs {
		states = append(states, rec.State)
		if rec.Image != "" {
			svc.Image = rec.Image
		}
		if rec.Status != "" {
			svc.LastEvent = rec.Status
		}
		for _, p := range rec.Ports {
			portSet[FormatPort(p)] = struct{}{}
		}
	}

	svc.State = ServiceState(states)
	svc.Ports = sortedPorts(portSet)
	return svc
}

// ServiceState folds the member container states of one service:
// all running, all stopped, any restarting, and everything else is an
// error mix.
func ServiceState(states []models.ContainerState) models.ServiceState {
	if len(states) == 0 {
		return models.ServiceStopped
	}

	allRunning, allStopped := true, true
	for _, s := range states {
		if s == models.StateRestarting {
			return models.ServiceRestarting
		}
		if s != models.StateRunning {
			allRunning = false
		}
		if !isStoppedState(s) {
			allStopped = false
		}
	}

	switch {
	case allRunning:
		return models.ServiceRunning
	case allStopped:
		return models.ServiceStopped
	default:
		return models.ServiceError
	}
}

// StackStatus folds service states into the stack's aggregate status:
// all running is running, all stopped (or no services) is stopped, any
// other mix is degraded.
func StackStatus(services []models.Service) models.StackStatus {
	if len(services) == 0 {
		return models.StackStopped
	}

	allRunning, allStopped := true, true
	for _, svc := range services {
		if svc.State != models.ServiceRunning {
			allRunning = false
		}
		if svc.State != models.ServiceStopped {
			allStopped = false
		}
	}

	switch {
	case allRunning:
		return models.StackRunning
	case allStopped:
		return models.StackStopped
	default:
		return models.StackDegraded
	}
}

// FormatPort renders a port mapping as "{host:}{container}/{proto}".
func FormatPort(p models.Port) string {
	if p.HostPort > 0 {
		return fmt.Sprintf("%d:%d/%s", p.HostPort, p.ContainerPort, p.Protocol)
	}
	return fmt.Sprintf("%d/%s", p.ContainerPort, p.Protocol)
}

// DisplayName turns an ownership key into a human title: runs of dashes
// and underscores become single spaces, each word is title-cased.
func DisplayName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// resolvePath picks a best-effort pointer at the stack's definition:
// config-files label, else working-dir label, else the primary
// container's display name.
func resolvePath(members []models.ContainerRecord) string {
	for _, rec := range members {
		if path := rec.Labels[LabelConfigFiles]; path != "" {
			return path
		}
	}
	for _, rec := range members {
		if dir := rec.Labels[LabelWorkingDir]; dir != "" {
			return dir
		}
	}
	if len(members) > 0 {
		return members[0].Name()
	}
	return ""
}

// isStoppedState reports whether a container state counts as stopped for
// rollup purposes. Paused, removing and unknown are neither running nor
// stopped, so their presence degrades the service.
func isStoppedState(s models.ContainerState) bool {
	switch s {
	case models.StateExited, models.StateCreated, models.StateDead:
		return true
	}
	return false
}

// sanitizeName strips characters that would make a derived name ambiguous
// as a stack or service key.
func sanitizeName(name string) string {
	name = strings.TrimPrefix(name, "/")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}

func sortedPorts(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ports := make([]string, 0, len(set))
	for p := range set {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	return ports
}
