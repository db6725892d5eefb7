package domain

// Category is the catalog genre a song is filed under.
type Category string

const (
	CategoryOriginal      Category = "ORIGINAL"
	CategoryPopAndAnime   Category = "POPS & ANIME"
	CategoryVariety       Category = "VARIETY"
	CategoryNiconico      Category = "niconico"
	CategoryIrodorimidori Category = "イロドリミドリ"
	CategoryGekimai       Category = "ゲキマイ"
	CategoryTouhou        Category = "東方Project"
)

// Song is an immutable catalog entry. The core only reads songs; the
// catalog adapter owns their lifecycle.
type Song struct {
	ID       int      `json:"id"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Image    string   `json:"image"`
	BPM      int      `json:"bpm"`
	Charts   []Chart  `json:"charts"`
}

// Chart is one difficulty variant of a song. A song carries at most one
// chart per difficulty.
type Chart struct {
	SongID        int        `json:"songId"`
	Difficulty    Difficulty `json:"difficulty"`
	Level         int        `json:"level"`
	LevelDecimal  int        `json:"levelDecimal"`
	WeKanji       string     `json:"we_kanji"`
	WeStar        int        `json:"we_star"`
	LevelDesigner string     `json:"levelDesigner"`
}

// Difficulty enumerates the six chart difficulties. Values are encoded
// numerically on the wire and in persisted state.
type Difficulty int

const (
	DifficultyBasic Difficulty = iota
	DifficultyAdvanced
	DifficultyExpert
	DifficultyMaster
	DifficultyUltima
	DifficultyWorldsEnd
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBasic:
		return "BASIC"
	case DifficultyAdvanced:
		return "ADVANCED"
	case DifficultyExpert:
		return "EXPERT"
	case DifficultyMaster:
		return "MASTER"
	case DifficultyUltima:
		return "ULTIMA"
	case DifficultyWorldsEnd:
		return "WORLD'S END"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether d is one of the six known difficulties.
func (d Difficulty) Valid() bool {
	return d >= DifficultyBasic && d <= DifficultyWorldsEnd
}
