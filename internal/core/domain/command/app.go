package command

import (
	"context"

	"setlist/internal/core/port"
)

// RegisterConfigCommand binds updateConfigAll to the config manager.
// The payload is the full key-to-value map the client wants written.
func RegisterConfigCommand(r *Registry, cfg port.ConfigWriter) {
	r.Register("updateConfigAll", func(args any) (Command, error) {
		var values map[string]any
		if err := DecodeArgs(args, &values); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return nil, cfg.UpdateAll(values)
		}), nil
	})
}

// RegisterSongUpdateCommand binds updateSong to the catalog updater.
func RegisterSongUpdateCommand(r *Registry, updater port.CatalogUpdater) {
	r.Register("updateSong", func(any) (Command, error) {
		return Func(func(ctx context.Context) (any, error) {
			return nil, updater.Update(ctx)
		}), nil
	})
}

// RegisterMessageCommand binds message to the console router, letting a
// client feed one console line through the websocket.
func RegisterMessageCommand(r *Registry, console port.ConsoleSink) {
	r.Register("message", func(args any) (Command, error) {
		var line string
		if err := DecodeArgs(args, &line); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			console.HandleLine(ctx, line)
			return nil, nil
		}), nil
	})
}

// RegisterRestartCommand binds restart to the app lifecycle.
func RegisterRestartCommand(r *Registry, app port.Restarter) {
	r.Register("restart", func(any) (Command, error) {
		return Func(func(ctx context.Context) (any, error) {
			return nil, app.Restart(ctx)
		}), nil
	})
}
