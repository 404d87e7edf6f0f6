package models

// Action is one of the closed set of stack lifecycle actions.
type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionRestart Action = "restart"
	ActionPull    Action = "pull"
)

// Valid reports whether the action belongs to the closed vocabulary.
func (a Action) Valid() bool {
	switch a {
	case ActionUp, ActionDown, ActionRestart, ActionPull:
		return true
	}
	return false
}

// Verb returns the past-tense verb used in rendered action summaries.
func (a Action) Verb() string {
	switch a {
	case ActionUp:
		return "Started"
	case ActionDown:
		return "Stopped"
	case ActionRestart:
		return "Restarted"
	case ActionPull:
		return "Pulled"
	default:
		return "Applied"
	}
}

// ActionRequest asks for one lifecycle action against a stack. An empty
// Services list targets every service in the stack; names are matched
// case-insensitively against resolved service names.
type ActionRequest struct {
	Action   Action   `json:"action"`
	Services []string `json:"services,omitempty"`
}

// ActionOutcome is the result of a dispatched action: the refreshed stack
// view, the number of services the request covered, and a rendered
// human-readable description. The count reflects requested scope, not
// necessarily what the engine ended up mutating.
type ActionOutcome struct {
	Stack       Stack  `json:"stack"`
	Affected    int    `json:"affected"`
	Description string `json:"description"`
}
