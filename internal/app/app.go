package app

import (
	"context"
	"sync"

	"setlist/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Status is the coarse lifecycle state pushed to overlay clients.
type Status string

const (
	StatusInitialized Status = "INITIALIZED"
	StatusRunning     Status = "RUNNING"
	StatusStopped     Status = "STOPPED"
	StatusError       Status = "ERROR"
)

// ErrorMsg is the error detail attached to an ERROR status push.
type ErrorMsg struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type statusArgs struct {
	Status Status    `json:"status"`
	Err    *ErrorMsg `json:"err,omitempty"`
}

// App owns the boot/stop lifecycle of the collaborators and mirrors its
// state to clients as setAppStatus pushes. The actual wiring lives in
// the start/stop hooks provided by main; App sequences them and backs
// the restart command.
type App struct {
	dispatcher port.ClientDispatcher

	mu       sync.Mutex
	status   Status
	lastErr  *ErrorMsg
	starting bool
	stopping bool

	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

func New(dispatcher port.ClientDispatcher) *App {
	a := &App{dispatcher: dispatcher, status: StatusInitialized}

	dispatcher.AddNewClientListener(func(clientID string) {
		a.mu.Lock()
		args := statusArgs{Status: a.status}
		if a.status == StatusError {
			args.Err = a.lastErr
		}
		a.mu.Unlock()
		dispatcher.Dispatch(clientID, port.ClientCommand{Action: "setAppStatus", Args: args})
	})

	return a
}

// SetHooks installs the boot and shutdown functions.
func (a *App) SetHooks(start, stop func(ctx context.Context) error) {
	a.start = start
	a.stop = stop
}

// Start boots the collaborators. A failed boot records the error,
// pushes ERROR to clients and tears down whatever came up.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.status == StatusRunning || a.starting {
		a.mu.Unlock()
		return nil
	}
	a.starting = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.starting = false
		a.mu.Unlock()
	}()

	if err := a.start(ctx); err != nil {
		log.Error().Err(err).Msg("boot failed")
		a.mu.Lock()
		a.lastErr = &ErrorMsg{Name: "BootError", Message: err.Error()}
		a.mu.Unlock()
		a.toStatus(StatusError)
		if stopErr := a.stop(ctx); stopErr != nil {
			log.Warn().Err(stopErr).Msg("teardown after failed boot")
		}
		return err
	}

	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
	a.toStatus(StatusRunning)
	log.Info().Msg("core started")

	return nil
}

// Stop shuts the collaborators down.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.status == StatusStopped || a.stopping {
		a.mu.Unlock()
		return nil
	}
	a.stopping = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.stopping = false
		a.mu.Unlock()
	}()

	err := a.stop(ctx)
	a.toStatus(StatusStopped)
	return err
}

// Restart stops and re-boots the collaborators. It backs the restart
// command and config changes to requires-restart keys.
func (a *App) Restart(ctx context.Context) error {
	log.Info().Msg("restarting core")
	if err := a.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("stop during restart")
	}
	return a.Start(ctx)
}

func (a *App) toStatus(status Status) {
	a.mu.Lock()
	a.status = status
	args := statusArgs{Status: status}
	if status == StatusError {
		args.Err = a.lastErr
	}
	a.mu.Unlock()

	a.dispatcher.DispatchAll(port.ClientCommand{Action: "setAppStatus", Args: args})
}
