package voice

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Command is a canonical dog command.
type Command string

const (
	CommandSit  Command = "앉아"
	CommandHand Command = "손"
	CommandDown Command = "엎드려"
)

// English returns the English name of the command.
func (c Command) English() string {
	switch c {
	case CommandSit:
		return "sit"
	case CommandHand:
		return "hand"
	case CommandDown:
		return "down"
	default:
		return ""
	}
}

// ParseCommand accepts a canonical command or its English name.
func ParseCommand(s string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CommandSit), "sit":
		return CommandSit, true
	case string(CommandHand), "hand", "paw":
		return CommandHand, true
	case string(CommandDown), "down", "lie down", "liedown":
		return CommandDown, true
	}
	return "", false
}

type alias struct {
	word    string
	command Command
}

// Candidate order decides ties.
var defaultAliases = []alias{
	{"앉아", CommandSit},
	{"앉기", CommandSit},
	{"손", CommandHand},
	{"손줘", CommandHand},
	{"엎드려", CommandDown},
	{"누워", CommandDown},
	{"다운", CommandDown},
	{"sit", CommandSit},
	{"paw", CommandHand},
	{"hand", CommandHand},
	{"shake", CommandHand},
	{"down", CommandDown},
	{"lie", CommandDown},
}

// Result describes a successful match.
type Result struct {
	Command  Command `json:"command"`
	Word     string  `json:"word"`     // Transcript word that matched
	Match    string  `json:"match"`    // Alias it matched
	Distance int     `json:"distance"` // Edit distance between the two
}

// Matcher maps transcripts to commands.
type Matcher struct {
	cfg     Config
	aliases []alias
}

// NewMatcher creates a matcher with the built-in aliases.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{
		cfg:     cfg,
		aliases: append([]alias(nil), defaultAliases...),
	}
}

// AddAlias registers an extra word for cmd. Added words rank after the
// built-in ones on ties.
func (m *Matcher) AddAlias(word string, cmd Command) {
	m.aliases = append(m.aliases, alias{word: strings.ToLower(word), command: cmd})
}

// Words returns the alias words in candidate order.
func (m *Matcher) Words() []string {
	out := make([]string, len(m.aliases))
	for i, a := range m.aliases {
		out[i] = a.word
	}
	return out
}

func isSeparator(r rune) bool {
	switch r {
	case ',', '.', '!', '?':
		return true
	}
	return unicode.IsSpace(r)
}

// Normalize finds the first transcript word close enough to a command word.
// Words are tried left to right; for each word the closest alias wins, and
// the earlier alias wins a tie.
func (m *Matcher) Normalize(text string) (Result, bool) {
	for _, w := range strings.FieldsFunc(text, isSeparator) {
		word := strings.ToLower(w)
		if res, ok := m.best(word); ok {
			return res, true
		}
	}
	return Result{}, false
}

// Parse is Normalize with an error for unmatched transcripts.
func (m *Matcher) Parse(text string) (Result, error) {
	res, ok := m.Normalize(text)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(text))
	}
	return res, nil
}

func (m *Matcher) best(word string) (Result, bool) {
	var out Result
	found := false
	for _, a := range m.aliases {
		limit := m.cfg.MaxDistance
		if m.cfg.ScaleByLength {
			limit = min(limit, utf8.RuneCountInString(a.word)/2)
		}
		d := Levenshtein(word, a.word)
		if d <= limit && (!found || d < out.Distance) {
			out = Result{Command: a.command, Word: word, Match: a.word, Distance: d}
			found = true
		}
	}
	return out, found
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
