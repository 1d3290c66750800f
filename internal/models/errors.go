package models

import "errors"

// Sentinel errors shared by the ledger, environment, task graph and controller.
var (
	// Resource ledger
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrEmptyUnitID         = errors.New("unit id is empty")

	// Events and scenarios
	ErrUnknownScenarioType = errors.New("unknown scenario type")
	ErrEventNotFound       = errors.New("event not found")
	ErrBuildingNotFound    = errors.New("building not found")

	// Task graph
	ErrCycleDetected     = errors.New("cycle detected in task dependencies")
	ErrInvalidMove       = errors.New("invalid task position")
	ErrTaskHasDependents = errors.New("task has dependents")
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrInvalidEdit       = errors.New("invalid structural edit")

	// Units and dispatch
	ErrDispatchFailure    = errors.New("dispatch failure")
	ErrUnitNotFound       = errors.New("unit not found")
	ErrActionNotSupported = errors.New("action not supported by unit")

	// Persistence
	ErrArtifactNotFound = errors.New("artifact not found")
)
