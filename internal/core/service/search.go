package service

import (
	"strings"
	"unicode"

	"setlist/internal/core/port"

	"github.com/mozillazg/go-pinyin"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"
)

// AliasEntry maps one searchable alias to a song id. Besides every
// song title, the index holds one derived alias per title and any
// operator-curated entries.
type AliasEntry struct {
	Alias  string `json:"alias"`
	SongID int    `json:"songId"`
}

type aliasIndex []AliasEntry

func (a aliasIndex) String(i int) string { return a[i].Alias }
func (a aliasIndex) Len() int            { return len(a) }

// Search resolves free-text song names to catalog candidates with an
// approximate string match over the alias index.
type Search struct {
	catalog port.SongCatalog
	index   aliasIndex
}

func NewSearch(catalog port.SongCatalog) *Search {
	return &Search{catalog: catalog}
}

// Load rebuilds the alias index from the catalog plus the curated
// extra aliases. For titles in CJK script the derived alias is a pinyin
// transliteration; for everything else it is the initialism of the
// title's words.
func (s *Search) Load(extra []AliasEntry) {
	songs := s.catalog.AllSongs()
	index := make(aliasIndex, 0, 2*len(songs)+len(extra))

	for _, song := range songs {
		index = append(index, AliasEntry{Alias: song.Title, SongID: song.ID})
		if alias := deriveAlias(song.Title); alias != "" {
			index = append(index, AliasEntry{Alias: alias, SongID: song.ID})
		}
	}
	index = append(index, extra...)

	s.index = index

	log.Info().Int("songs", len(songs)).Int("aliases", len(index)).Msg("song search index built")
}

// Match returns the ids of every entry tied for the best match score,
// deduplicated. Ties are included on purpose: a query that is equally
// close to several aliases must surface all of them so the request can
// take the ambiguous-order path instead of arbitrarily picking one.
// Scores are integers, so the tie check is exact.
func (s *Search) Match(query string) []int {
	matches := fuzzy.FindFrom(query, s.index)
	if len(matches) == 0 {
		return nil
	}

	best := matches[0].Score
	seen := make(map[int]bool)
	var ids []int
	for _, match := range matches {
		if match.Score != best {
			break
		}
		id := s.index[match.Index].SongID
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}

// deriveAlias builds the secondary alias for a title: a pinyin
// rendition when the title carries Han script, otherwise the lowercase
// initialism of its words. Returns "" when nothing useful derives.
func deriveAlias(title string) string {
	if containsHan(title) {
		args := pinyin.NewArgs()
		return strings.Join(pinyin.LazyConvert(title, &args), "")
	}
	return initialism(title)
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func initialism(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, title)

	var sb strings.Builder
	for _, word := range strings.Fields(cleaned) {
		r := []rune(word)
		sb.WriteRune(unicode.ToLower(r[0]))
	}

	alias := sb.String()
	if len(alias) < 2 {
		return ""
	}
	return alias
}
