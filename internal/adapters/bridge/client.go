package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"setlist/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Client talks to the playback bridge sitting in front of the arcade
// cabinet. Completion of an order goes through SelectSong; the bridge
// decides whether the cabinet accepted the selection.
type Client struct {
	baseURL string
	http    *http.Client
}

// ChartMeta is the chart shape the bridge reports for its installed
// song data.
type ChartMeta struct {
	Difficulty   domain.Difficulty `json:"difficulty"`
	Level        int               `json:"level"`
	LevelDecimal int               `json:"levelDecimal"`
}

// SongMeta is one song the bridge knows about.
type SongMeta struct {
	SongID int         `json:"song_id"`
	Charts []ChartMeta `json:"charts"`
}

func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("bridge url not configured")
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

const (
	pollInterval    = 2 * time.Second
	pollMaxAttempts = 10
)

// Connect polls the bridge until it reports ready.
func (c *Client) Connect(ctx context.Context) error {
	for attempt := 1; attempt <= pollMaxAttempts; attempt++ {
		ready, err := c.ready(ctx)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("bridge not reachable")
		} else if ready {
			log.Info().Str("url", c.baseURL).Msg("bridge ready")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	return fmt.Errorf("bridge at %s not ready after %d attempts", c.baseURL, pollMaxAttempts)
}

func (c *Client) ready(ctx context.Context) (bool, error) {
	var out struct {
		Ready bool `json:"ready"`
	}
	if err := c.get(ctx, "/ready", &out); err != nil {
		return false, err
	}
	return out.Ready, nil
}

// SelectSong asks the bridge to select the song on the cabinet and
// reports whether the selection was accepted.
func (c *Client) SelectSong(ctx context.Context, songID int, difficulty domain.Difficulty) (bool, error) {
	payload, err := json.Marshal(map[string]any{
		"song_id":    songID,
		"difficulty": difficulty,
	})
	if err != nil {
		return false, fmt.Errorf("encoding select request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/select", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("creating select request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling bridge: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status from bridge: %d", res.StatusCode)
	}

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decoding select response: %w", err)
	}

	return out.Success, nil
}

// Songs fetches the song data installed on the cabinet, used by the
// catalog updater to fill in chart levels.
func (c *Client) Songs(ctx context.Context) ([]SongMeta, error) {
	var out []SongMeta
	if err := c.get(ctx, "/songs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling bridge: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from bridge: %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding bridge response: %w", err)
	}

	return nil
}
