package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"setlist/internal/core/domain"
)

// OtogeDB pulls the community song database: one JSON array with song
// metadata and per-difficulty chart listings.
type OtogeDB struct {
	url  string
	http *http.Client
}

func NewOtogeDB(url string) *OtogeDB {
	return &OtogeDB{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type otogeChart struct {
	Difficulty    int    `json:"difficulty"`
	Level         int    `json:"level"`
	LevelDecimal  int    `json:"levelDecimal"`
	WeKanji       string `json:"we_kanji"`
	WeStar        int    `json:"we_star"`
	LevelDesigner string `json:"levelDesigner"`
}

type otogeSong struct {
	ID       int          `json:"id"`
	Category string       `json:"category"`
	Title    string       `json:"title"`
	Artist   string       `json:"artist"`
	Image    string       `json:"image"`
	BPM      int          `json:"bpm"`
	Charts   []otogeChart `json:"charts"`
}

// FetchSongs merges the remote song list into the working set,
// replacing entries that already exist.
func (o *OtogeDB) FetchSongs(ctx context.Context, songs map[int]*domain.Song) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return fmt.Errorf("creating otogedb request: %w", err)
	}

	res, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching otogedb: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from otogedb: %d", res.StatusCode)
	}

	var remote []otogeSong
	if err := json.NewDecoder(res.Body).Decode(&remote); err != nil {
		return fmt.Errorf("decoding otogedb response: %w", err)
	}

	for _, entry := range remote {
		song := &domain.Song{
			ID:       entry.ID,
			Category: domain.Category(entry.Category),
			Title:    entry.Title,
			Artist:   entry.Artist,
			Image:    entry.Image,
			BPM:      entry.BPM,
			Charts:   make([]domain.Chart, 0, len(entry.Charts)),
		}
		for _, chart := range entry.Charts {
			difficulty := domain.Difficulty(chart.Difficulty)
			if !difficulty.Valid() {
				continue
			}
			song.Charts = append(song.Charts, domain.Chart{
				SongID:        entry.ID,
				Difficulty:    difficulty,
				Level:         chart.Level,
				LevelDecimal:  chart.LevelDecimal,
				WeKanji:       chart.WeKanji,
				WeStar:        chart.WeStar,
				LevelDesigner: chart.LevelDesigner,
			})
		}
		songs[song.ID] = song
	}

	return nil
}
