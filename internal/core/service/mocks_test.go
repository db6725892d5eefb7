package service

import (
	"context"
	"sort"
	"sync"

	"setlist/internal/core/domain"
	"setlist/internal/core/port"
)

type MockCatalog struct {
	songs map[int]*domain.Song
}

func (m *MockCatalog) GetSong(id int) (*domain.Song, bool) {
	song, ok := m.songs[id]
	return song, ok
}

func (m *MockCatalog) GetChart(id int, difficulty domain.Difficulty) (*domain.Chart, bool) {
	song, ok := m.songs[id]
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

func (m *MockCatalog) AllSongs() []*domain.Song {
	songs := make([]*domain.Song, 0, len(m.songs))
	for _, song := range m.songs {
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs
}

// song builds a catalog entry with charts at the given difficulties.
func song(id int, title string, difficulties ...domain.Difficulty) *domain.Song {
	s := &domain.Song{ID: id, Title: title, Artist: "artist"}
	for _, difficulty := range difficulties {
		s.Charts = append(s.Charts, domain.Chart{SongID: id, Difficulty: difficulty, Level: 13})
	}
	return s
}

func catalogOf(songs ...*domain.Song) *MockCatalog {
	m := &MockCatalog{songs: make(map[int]*domain.Song)}
	for _, s := range songs {
		m.songs[s.ID] = s
	}
	return m
}

type MockDispatcher struct {
	mu        sync.Mutex
	pushes    []port.ClientCommand
	listeners []func(string)
}

func (m *MockDispatcher) Dispatch(_ string, cmd port.ClientCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, cmd)
}

func (m *MockDispatcher) DispatchAll(cmd port.ClientCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, cmd)
}

func (m *MockDispatcher) AddNewClientListener(fn func(string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
	return func() {}
}

func (m *MockDispatcher) Pushes() []port.ClientCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	pushes := make([]port.ClientCommand, len(m.pushes))
	copy(pushes, m.pushes)
	return pushes
}

type MockStore struct {
	mu      sync.Mutex
	orders  []domain.Order
	saved   [][]domain.Order
	loadErr error
	saveErr error
}

func (m *MockStore) Load(context.Context) ([]domain.Order, error) {
	return m.orders, m.loadErr
}

func (m *MockStore) Save(_ context.Context, orders []domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, orders)
	return m.saveErr
}

func (m *MockStore) LastSaved() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type MockSelector struct {
	accept bool
	err    error
	calls  int
}

func (m *MockSelector) SelectSong(context.Context, int, domain.Difficulty) (bool, error) {
	m.calls++
	return m.accept, m.err
}
