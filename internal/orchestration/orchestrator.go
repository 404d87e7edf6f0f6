// Package orchestration is the boundary the rest of the application calls
// for container-stack operations. It wraps the engine client and the stack
// aggregator with availability checks, error translation and telemetry.
//
// Every call performs its own sequential reads and writes against the
// engine; there is no in-process cache or shared mutable state. Concurrent
// actions on the same stack are not coordinated - the engine is the sole
// source of truth and arbitrates concurrent mutations.
package orchestration

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/engine"
	"github.com/fleetdeck/fleetdeck/internal/stack"
	"github.com/fleetdeck/fleetdeck/internal/telemetry"
	"github.com/fleetdeck/fleetdeck/models"
)

// Engine is the container-engine surface the orchestrator depends on.
// *engine.Client satisfies it; tests substitute a fake.
type Engine interface {
	Available(ctx context.Context) bool
	ListContainers(ctx context.Context) ([]models.ContainerRecord, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	PullImage(ctx context.Context, ref string) error
}

// Orchestrator lists derived stacks and dispatches lifecycle actions.
type Orchestrator struct {
	engine   Engine
	recorder telemetry.Recorder
	now      func() time.Time
}

// New creates an orchestrator. A nil recorder disables telemetry.
func New(eng Engine, recorder telemetry.Recorder) *Orchestrator {
	if recorder == nil {
		recorder = telemetry.Discard{}
	}
	return &Orchestrator{
		engine:   eng,
		recorder: recorder,
		now:      time.Now,
	}
}

// ListStacks returns all stacks derived from a fresh container snapshot,
// sorted by display name. Idempotent and side-effect free.
func (o *Orchestrator) ListStacks(ctx context.Context) ([]models.Stack, error) {
	records, err := o.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stack.Aggregate(records, o.now()), nil
}

// GetStack returns one stack by id, or ErrStackNotFound when the current
// snapshot has no such stack.
func (o *Orchestrator) GetStack(ctx context.Context, stackID string) (*models.Stack, error) {
	stacks, err := o.ListStacks(ctx)
	if err != nil {
		return nil, err
	}
	if st := findStack(stacks, stackID); st != nil {
		return st, nil
	}
	return nil, ErrStackNotFound
}

// PerformAction applies a lifecycle action to a stack. It re-lists
// containers, resolves the target subset, issues the engine calls
// sequentially, re-derives the stack and emits one telemetry event.
//
// A miss - unknown stack id, or named services that do not exist in the
// stack - returns ErrStackNotFound without mutating anything. A failed
// engine call aborts the remaining sequence and surfaces an *ActionError;
// calls already issued are not rolled back.
func (o *Orchestrator) PerformAction(ctx context.Context, stackID string, req models.ActionRequest) (*models.ActionOutcome, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}

	records, err := o.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	before := findStack(stack.Aggregate(records, o.now()), stackID)
	if before == nil {
		return nil, ErrStackNotFound
	}

	targets := resolveTargets(records, stackID, req.Services)
	if len(targets) == 0 {
		return nil, ErrStackNotFound
	}

	affected := len(req.Services)
	if affected == 0 {
		affected = len(before.Services)
	}

	actErr := o.dispatch(ctx, stackID, req.Action, targets)
	o.record(ctx, stackID, req, affected, actErr)
	if actErr != nil {
		return nil, actErr
	}

	return o.refresh(ctx, stackID, req.Action, affected)
}

// snapshot fails fast with the engine's typed unavailability error before
// any work begins.
func (o *Orchestrator) snapshot(ctx context.Context) ([]models.ContainerRecord, error) {
	if !o.engine.Available(ctx) {
		return nil, engine.ErrUnavailable
	}
	return o.engine.ListContainers(ctx)
}

// dispatch issues one engine call per target container, in order, stopping
// at the first failure.
func (o *Orchestrator) dispatch(ctx context.Context, stackID string, action models.Action, targets []models.ContainerRecord) error {
	for i, rec := range targets {
		var err error
		switch action {
		case models.ActionUp:
			err = o.engine.StartContainer(ctx, rec.ID)
		case models.ActionDown:
			err = o.engine.StopContainer(ctx, rec.ID)
		case models.ActionRestart:
			err = o.engine.RestartContainer(ctx, rec.ID)
		case models.ActionPull:
			err = o.engine.PullImage(ctx, rec.Image)
		}
		if err != nil {
			return &ActionError{
				StackID:     stackID,
				Service:     stack.ResolveServiceName(rec),
				ContainerID: models.TruncateID(rec.ID),
				Applied:     i,
				Err:         err,
			}
		}
	}
	return nil
}

// refresh re-reads the engine and re-derives the (possibly changed) stack.
func (o *Orchestrator) refresh(ctx context.Context, stackID string, action models.Action, affected int) (*models.ActionOutcome, error) {
	records, err := o.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	st := findStack(stack.Aggregate(records, o.now()), stackID)
	if st == nil {
		return nil, ErrStackNotFound
	}

	description := renderDescription(action, affected)
	st.LastAction = description

	return &models.ActionOutcome{
		Stack:       *st,
		Affected:    affected,
		Description: description,
	}, nil
}

// record emits the action outcome event. Telemetry failures are logged and
// swallowed; they never fail the action itself.
func (o *Orchestrator) record(ctx context.Context, stackID string, req models.ActionRequest, affected int, actErr error) {
	event := telemetry.NewActionEvent(stackID, string(req.Action), req.Services, affected, actErr)
	if err := o.recorder.Record(ctx, event); err != nil {
		log.Printf("telemetry: failed to record action event for stack %s: %v", stackID, err)
	}
}

// resolveTargets picks the containers an action applies to: every
// container in the stack, or only those whose resolved service name
// matches one of the requested names (case-insensitive).
func resolveTargets(records []models.ContainerRecord, stackID string, services []string) []models.ContainerRecord {
	wanted := make(map[string]bool, len(services))
	for _, s := range services {
		wanted[strings.ToLower(s)] = true
	}

	var targets []models.ContainerRecord
	for _, rec := range records {
		if stack.ResolveOwnership(rec).Key != stackID {
			continue
		}
		if len(wanted) > 0 && !wanted[strings.ToLower(stack.ResolveServiceName(rec))] {
			continue
		}
		targets = append(targets, rec)
	}
	return targets
}

func findStack(stacks []models.Stack, stackID string) *models.Stack {
	for i := range stacks {
		if stacks[i].ID == stackID {
			return &stacks[i]
		}
	}
	return nil
}

func renderDescription(action models.Action, affected int) string {
	noun := "services"
	if affected == 1 {
		noun = "service"
	}
	return fmt.Sprintf("%s (%d %s)", action.Verb(), affected, noun)
}
