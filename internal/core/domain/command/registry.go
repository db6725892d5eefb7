package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"setlist/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Command is one executable server command, already bound to its
// arguments.
type Command interface {
	Execute(ctx context.Context) (any, error)
}

// Factory builds a Command from raw arguments. Construction validates
// and decodes the arguments; execution performs the side effects.
type Factory func(args any) (Command, error)

// Func adapts a plain function to the Command interface.
type Func func(ctx context.Context) (any, error)

func (f Func) Execute(ctx context.Context) (any, error) { return f(ctx) }

// Registry maps action names to command factories. It is the
// consistency boundary for every mutating operation: handlers are only
// ever reached through Run, and no error or panic raised by a single
// command escapes it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Register binds an action name to a factory. Re-registering an action
// overwrites the previous factory silently.
func (r *Registry) Register(action string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}

	log.Info().Str("action", action).Msg("adding command factory to registry")
	r.factories[action] = factory
}

// Clear drops every registered factory.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = nil
}

// Run instantiates and executes the command for the given action. An
// unregistered action, a failed construction, and an execution error
// all come back as an unsuccessful result.
func (r *Registry) Run(ctx context.Context, action string, args any) (result port.Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("action", action).Interface("panic", p).Msg("command panicked")
			result = port.Result{}
		}
	}()

	r.mu.RLock()
	factory, ok := r.factories[action]
	r.mu.RUnlock()
	if !ok {
		log.Warn().Str("action", action).Msg("no factory for action")
		return port.Result{}
	}

	cmd, err := factory(args)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("failed to build command")
		return port.Result{}
	}

	data, err := cmd.Execute(ctx)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("command failed")
		return port.Result{}
	}

	log.Debug().Str("action", action).Interface("data", data).Msg("command executed")

	return port.Result{Success: true, Data: data}
}

// DecodeArgs fills dst from args, which is either a raw JSON payload
// off the wire or an in-process argument struct.
func DecodeArgs(args any, dst any) error {
	var (
		raw []byte
		err error
	)

	switch v := args.(type) {
	case nil:
		return nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		raw, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding command arguments: %w", err)
		}
	}

	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding command arguments: %w", err)
	}

	return nil
}
