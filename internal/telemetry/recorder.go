// Package telemetry is the sink for "an action happened" notifications.
// The orchestrator emits one event per completed action; the event log
// itself lives outside this system, so the Recorder interface is the whole
// contract.
package telemetry

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event describes one completed (or failed) stack action.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	StackID  string    `json:"stackId"`
	Action   string    `json:"action"`
	Services []string  `json:"services,omitempty"`
	Affected int       `json:"affected"`
	Error    string    `json:"error,omitempty"`
}

// NewActionEvent builds an event for a dispatched action. A nil err marks
// the action as successful.
func NewActionEvent(stackID, action string, services []string, affected int, err error) Event {
	event := Event{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		StackID:  stackID,
		Action:   action,
		Services: services,
		Affected: affected,
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

// Recorder accepts action events. Implementations must tolerate being
// called from request paths: a Record failure never fails the action that
// produced the event.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Log writes events to the process log. It is the default sink when no
// external event log is wired in.
type Log struct{}

func (Log) Record(_ context.Context, event Event) error {
	outcome := "ok"
	if event.Error != "" {
		outcome = "failed: " + event.Error
	}
	scope := "all services"
	if len(event.Services) > 0 {
		scope = strings.Join(event.Services, ",")
	}
	log.Printf("action %s on stack %s (%s, %d affected): %s",
		event.Action, event.StackID, scope, event.Affected, outcome)
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, Event) error { return nil }
