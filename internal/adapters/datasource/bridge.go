package datasource

import (
	"context"
	"fmt"

	"setlist/internal/adapters/bridge"
	"setlist/internal/core/domain"
)

// BridgeSource narrows the working set to what is actually installed on
// the cabinet and overrides chart levels with the cabinet's own data.
type BridgeSource struct {
	client *bridge.Client
}

func NewBridgeSource(client *bridge.Client) *BridgeSource {
	return &BridgeSource{client: client}
}

func (b *BridgeSource) FetchSongs(ctx context.Context, songs map[int]*domain.Song) error {
	installed, err := b.client.Songs(ctx)
	if err != nil {
		return fmt.Errorf("fetching cabinet song data: %w", err)
	}

	byID := make(map[int][]bridge.ChartMeta, len(installed))
	for _, meta := range installed {
		byID[meta.SongID] = meta.Charts
	}

	for id, song := range songs {
		charts, ok := byID[id]
		if !ok {
			delete(songs, id)
			continue
		}
		for _, chart := range charts {
			for i := range song.Charts {
				if song.Charts[i].Difficulty == chart.Difficulty {
					song.Charts[i].Level = chart.Level
					song.Charts[i].LevelDecimal = chart.LevelDecimal
				}
			}
		}
	}

	return nil
}
