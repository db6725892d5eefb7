package port

import "context"

// Restarter re-boots the collaborators behind the running app.
type Restarter interface {
	Restart(ctx context.Context) error
}

// CatalogUpdater refreshes the song catalog from its data sources.
type CatalogUpdater interface {
	Update(ctx context.Context) error
}

// ConsoleSink accepts one line of local console input.
type ConsoleSink interface {
	HandleLine(ctx context.Context, line string)
}

// ConfigWriter is the write side of the config manager, driven by the
// updateConfigAll client command.
type ConfigWriter interface {
	UpdateAll(values map[string]any) error
}
