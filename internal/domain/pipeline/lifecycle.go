package pipeline

import (
	"github.com/felixgeelhaar/statekit"
)

// RunState is the lifecycle state of a pipeline run.
type RunState string

// Machine state names, kept untyped for the statekit builder.
const (
	stateIdle      = "idle"
	stateRunning   = "running"
	stateSucceeded = "succeeded"
	stateFailed    = "failed"
)

const (
	// RunIdle means the run has not started.
	RunIdle RunState = stateIdle
	// RunRunning means steps are being executed.
	RunRunning RunState = stateRunning
	// RunSucceeded means every step is complete.
	RunSucceeded RunState = stateSucceeded
	// RunFailed means a step failed or the run was cancelled.
	RunFailed RunState = stateFailed
)

// Lifecycle events.
const (
	EventStart   = "START"
	EventSucceed = "SUCCEED"
	EventFail    = "FAIL"
	EventReset   = "RESET"
)

// lifecycleContext is the statekit machine context. The run keeps its own
// results, so the machine only tracks the state value.
type lifecycleContext struct{}

// lifecycle tracks a run through idle -> running -> succeeded|failed.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("provision-run").
		WithInitial(stateIdle).
		WithContext(lifecycleContext{}).
		State(stateIdle).
		On(EventStart).Target(stateRunning).Done().
		State(stateRunning).
		On(EventSucceed).Target(stateSucceeded).
		On(EventFail).Target(stateFailed).Done().
		State(stateSucceeded).
		On(EventReset).Target(stateIdle).Done().
		State(stateFailed).
		On(EventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return &lifecycle{interp: interp}, nil
}

func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *lifecycle) state() RunState {
	return RunState(l.interp.State().Value)
}
