package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"setlist/internal/adapters/storage"
	"setlist/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Source contributes songs to a catalog refresh. Sources run in order
// over a shared working set, so later sources can enrich entries added
// by earlier ones.
type Source interface {
	FetchSongs(ctx context.Context, songs map[int]*domain.Song) error
}

// Updater refreshes the catalog from its data sources and commits the
// result. It backs the updateSong command.
type Updater struct {
	catalog *storage.Catalog
	sources []Source
}

func NewUpdater(catalog *storage.Catalog, sources ...Source) *Updater {
	return &Updater{catalog: catalog, sources: sources}
}

// Update runs every source over a copy of the current catalog and
// commits the merged result. An empty result is never committed; a
// partial source failure keeps whatever earlier sources produced.
func (u *Updater) Update(ctx context.Context) error {
	working := make(map[int]*domain.Song)
	for _, song := range u.catalog.AllSongs() {
		working[song.ID] = song
	}

	log.Info().Int("sources", len(u.sources)).Msg("updating song catalog")

	var failed error
	for i, source := range u.sources {
		if err := source.FetchSongs(ctx, working); err != nil {
			failed = errors.Join(failed, err)
			log.Error().Err(err).Int("source", i+1).Msg("data source failed")
			continue
		}
		log.Info().Int("source", i+1).Int("total", len(u.sources)).Msg("data source done")
	}

	if len(working) == 0 {
		log.Warn().Msg("data sources returned nothing, keeping current catalog")
		return failed
	}

	songs := make([]*domain.Song, 0, len(working))
	for _, song := range working {
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })

	if err := u.catalog.ReplaceAll(ctx, songs); err != nil {
		return fmt.Errorf("committing catalog update: %w", err)
	}

	log.Info().Int("songs", len(songs)).Msg("catalog updated")

	return failed
}
