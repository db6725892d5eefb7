package port

import "setlist/internal/core/domain"

// SongCatalog is the read side of the song catalog.
type SongCatalog interface {
	// GetSong returns the song with the given id, if present.
	GetSong(id int) (*domain.Song, bool)
	// GetChart returns the chart of a song at the given difficulty, if present.
	GetChart(id int, difficulty domain.Difficulty) (*domain.Chart, bool)
	// AllSongs returns every catalog entry, ordered by id.
	AllSongs() []*domain.Song
}
