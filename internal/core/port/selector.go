package port

import (
	"context"

	"setlist/internal/core/domain"
)

// SongSelector bridges order completion to external playback hardware.
// SelectSong reports whether the external system accepted the
// selection; a rejected or failed selection leaves the order queued.
type SongSelector interface {
	SelectSong(ctx context.Context, songID int, difficulty domain.Difficulty) (bool, error)
}
