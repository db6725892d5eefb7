package service

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"setlist/internal/core/domain"
	"setlist/internal/core/domain/command"
	"setlist/internal/core/port"
)

// Command prefixes recognized in chat. Prefix matching is
// case-sensitive and anchored at the start of the line.
const (
	prefixRequest = "点歌"
	prefixRemove  = "删除"
	prefixPin     = "置顶"
)

// exactDifficulties maps single localized characters to difficulties.
// Matching is exact.
var exactDifficulties = map[string]domain.Difficulty{
	"绿": domain.DifficultyBasic,
	"黄": domain.DifficultyAdvanced,
	"红": domain.DifficultyExpert,
	"紫": domain.DifficultyMaster,
	"黑": domain.DifficultyUltima,
	"彩": domain.DifficultyWorldsEnd,
}

// latinDifficulties maps Latin token prefixes to difficulties, checked
// case-insensitively in declared order; the first match wins.
var latinDifficulties = []struct {
	prefix     string
	difficulty domain.Difficulty
}{
	{"bas", domain.DifficultyBasic},
	{"adv", domain.DifficultyAdvanced},
	{"ex", domain.DifficultyExpert},
	{"ma", domain.DifficultyMaster},
	{"ult", domain.DifficultyUltima},
	{"we", domain.DifficultyWorldsEnd},
	{"worlds end", domain.DifficultyWorldsEnd},
	{"world's end", domain.DifficultyWorldsEnd},
}

// ParsedCommand is the structured outcome of one chat line: a registry
// action plus its argument struct.
type ParsedCommand struct {
	Action string
	Args   any
}

// Parser turns free-text chat lines into queue commands. Song names go
// through the matcher; queue indexes resolve against the live queue.
type Parser struct {
	queue  port.OrderQueue
	search *Search
}

func NewParser(queue port.OrderQueue, search *Search) *Parser {
	return &Parser{queue: queue, search: search}
}

// Parse resolves one chat line. Unrecognized prefixes, malformed
// arguments, out-of-range indexes and unmatched song names all return a
// ParseError.
func (p *Parser) Parse(text string) (ParsedCommand, error) {
	switch {
	case strings.HasPrefix(text, prefixRequest):
		return p.parseRequest(strings.TrimPrefix(text, prefixRequest))
	case strings.HasPrefix(text, prefixRemove):
		orderID, err := p.resolveIndex(strings.TrimPrefix(text, prefixRemove))
		if err != nil {
			return ParsedCommand{}, err
		}
		return ParsedCommand{Action: "orderRemove", Args: command.OrderRemoveArgs{OrderID: orderID}}, nil
	case strings.HasPrefix(text, prefixPin):
		orderID, err := p.resolveIndex(strings.TrimPrefix(text, prefixPin))
		if err != nil {
			return ParsedCommand{}, err
		}
		return ParsedCommand{Action: "orderMove", Args: command.OrderMoveArgs{OrderID: orderID, NewIndex: 0}}, nil
	}

	return ParsedCommand{}, domain.NewParseError("unknown command")
}

func (p *Parser) parseRequest(rest string) (ParsedCommand, error) {
	args := strings.Fields(rest)
	if len(args) == 0 {
		return ParsedCommand{}, domain.NewParseError("missing song name")
	}

	name, difficulty := splitDifficulty(args)

	matched := p.search.Match(name)
	switch len(matched) {
	case 0:
		return ParsedCommand{}, domain.NewParseError("no song matching %q", name)
	case 1:
		return ParsedCommand{
			Action: "orderPush",
			Args:   command.OrderPushArgs{SongID: matched[0], Difficulty: difficulty},
		}, nil
	default:
		return ParsedCommand{
			Action: "orderAmbiguousPush",
			Args:   command.OrderAmbiguousPushArgs{Candidates: matched, Difficulty: difficulty},
		}, nil
	}
}

// splitDifficulty pulls the difficulty token off the front or back of
// the request arguments. A request without a recognizable token, and a
// request whose whole name is a single character, both default to
// MASTER.
func splitDifficulty(args []string) (string, domain.Difficulty) {
	if len(args) == 1 && utf8.RuneCountInString(args[0]) == 1 {
		return args[0], domain.DifficultyMaster
	}

	first, size := utf8.DecodeRuneInString(args[0])
	if difficulty, ok := parseDifficulty(string(first)); ok {
		name := append([]string{args[0][size:]}, args[1:]...)
		return strings.TrimSpace(strings.Join(name, " ")), difficulty
	}

	if difficulty, ok := parseDifficulty(args[len(args)-1]); ok && len(args) > 1 {
		return strings.Join(args[:len(args)-1], " "), difficulty
	}

	return strings.Join(args, " "), domain.DifficultyMaster
}

func parseDifficulty(token string) (domain.Difficulty, bool) {
	if difficulty, ok := exactDifficulties[token]; ok {
		return difficulty, true
	}

	normalized := strings.ToLower(token)
	for _, entry := range latinDifficulties {
		if strings.HasPrefix(normalized, entry.prefix) {
			return entry.difficulty, true
		}
	}

	return 0, false
}

// resolveIndex turns a 1-based display index into the id of the order
// currently at that position.
func (p *Parser) resolveIndex(rest string) (string, error) {
	args := strings.Fields(rest)
	if len(args) != 1 {
		return "", domain.NewParseError("expected exactly one index argument")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return "", domain.NewParseError("index %q is not a number", args[0])
	}

	orders := p.queue.Snapshot()
	if index < 1 || index > len(orders) {
		return "", domain.NewParseError("index %d outside queue of %d", index, len(orders))
	}

	return orders[index-1].ID(), nil
}
