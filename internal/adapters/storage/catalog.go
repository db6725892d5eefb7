package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"setlist/internal/core/domain"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type songRecord struct {
	ID       int `gorm:"primaryKey"`
	Category string
	Title    string
	Artist   string
	Image    string
	BPM      int
	Charts   []chartRecord `gorm:"foreignKey:SongID;constraint:OnDelete:CASCADE"`
}

func (songRecord) TableName() string { return "songs" }

type chartRecord struct {
	SongID        int `gorm:"primaryKey"`
	Difficulty    int `gorm:"primaryKey"`
	Level         int
	LevelDecimal  int
	WeKanji       string
	WeStar        int
	LevelDesigner string
}

func (chartRecord) TableName() string { return "charts" }

// Catalog is a sqlite-backed song repository. Songs are kept in an
// in-memory map mirrored from the database, so reads never touch disk;
// ReplaceAll commits a full refresh from the data sources.
type Catalog struct {
	db *gorm.DB

	mu    sync.RWMutex
	songs map[int]*domain.Song
}

// OpenCatalog opens (or creates) the catalog database at path and loads
// every song into memory.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	if err := db.AutoMigrate(&songRecord{}, &chartRecord{}); err != nil {
		return nil, fmt.Errorf("migrating catalog db: %w", err)
	}

	c := &Catalog{db: db, songs: make(map[int]*domain.Song)}
	if err := c.reload(); err != nil {
		return nil, err
	}

	log.Info().Int("songs", len(c.songs)).Str("path", path).Msg("catalog loaded")

	return c, nil
}

func (c *Catalog) reload() error {
	var records []songRecord
	if err := c.db.Preload("Charts").Find(&records).Error; err != nil {
		return fmt.Errorf("loading songs: %w", err)
	}

	songs := make(map[int]*domain.Song, len(records))
	for _, record := range records {
		songs[record.ID] = recordToSong(record)
	}

	c.mu.Lock()
	c.songs = songs
	c.mu.Unlock()

	return nil
}

// GetSong returns the song with the given id.
func (c *Catalog) GetSong(id int) (*domain.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	song, ok := c.songs[id]
	return song, ok
}

// GetChart returns the chart of a song at the given difficulty.
func (c *Catalog) GetChart(id int, difficulty domain.Difficulty) (*domain.Chart, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	song, ok := c.songs[id]
	if !ok {
		return nil, false
	}
	for i := range song.Charts {
		if song.Charts[i].Difficulty == difficulty {
			return &song.Charts[i], true
		}
	}
	return nil, false
}

// AllSongs returns every catalog entry ordered by id.
func (c *Catalog) AllSongs() []*domain.Song {
	c.mu.RLock()
	songs := make([]*domain.Song, 0, len(c.songs))
	for _, song := range c.songs {
		songs = append(songs, song)
	}
	c.mu.RUnlock()

	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs
}

// ReplaceAll swaps the whole catalog for the given songs, in one
// transaction, then refreshes the in-memory mirror.
func (c *Catalog) ReplaceAll(ctx context.Context, songs []*domain.Song) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&chartRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&songRecord{}).Error; err != nil {
			return err
		}
		for _, song := range songs {
			if err := tx.Create(songToRecord(song)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}

	return c.reload()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	db, err := c.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func recordToSong(record songRecord) *domain.Song {
	song := &domain.Song{
		ID:       record.ID,
		Category: domain.Category(record.Category),
		Title:    record.Title,
		Artist:   record.Artist,
		Image:    record.Image,
		BPM:      record.BPM,
		Charts:   make([]domain.Chart, 0, len(record.Charts)),
	}
	for _, chart := range record.Charts {
		song.Charts = append(song.Charts, domain.Chart{
			SongID:        chart.SongID,
			Difficulty:    domain.Difficulty(chart.Difficulty),
			Level:         chart.Level,
			LevelDecimal:  chart.LevelDecimal,
			WeKanji:       chart.WeKanji,
			WeStar:        chart.WeStar,
			LevelDesigner: chart.LevelDesigner,
		})
	}
	return song
}

func songToRecord(song *domain.Song) *songRecord {
	record := &songRecord{
		ID:       song.ID,
		Category: string(song.Category),
		Title:    song.Title,
		Artist:   song.Artist,
		Image:    song.Image,
		BPM:      song.BPM,
		Charts:   make([]chartRecord, 0, len(song.Charts)),
	}
	for _, chart := range song.Charts {
		record.Charts = append(record.Charts, chartRecord{
			SongID:        song.ID,
			Difficulty:    int(chart.Difficulty),
			Level:         chart.Level,
			LevelDecimal:  chart.LevelDecimal,
			WeKanji:       chart.WeKanji,
			WeStar:        chart.WeStar,
			LevelDesigner: chart.LevelDesigner,
		})
	}
	return record
}
