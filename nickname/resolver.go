package nickname

import (
	"strings"

	"golang.org/x/text/cases"

	"airbnb-cleaner/config"
	"airbnb-cleaner/models"
)

const (
	looseFallbackLength = 15
	minSharedWords      = 2
)

// Entry maps one full listing title to its nickname
type Entry struct {
	Title    string
	Nickname string
}

// Table is an ordered, read-only title to nickname mapping
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a Table from listings, keeping only listed ones. A repeated title keeps its first
// position and takes the later nickname.
func NewTable(listings []models.Listing) *Table {
	t := &Table{index: make(map[string]int)}
	for _, l := range listings {
		if !l.IsListed() || l.AirbnbName == "" || l.InternalName == "" {
			continue
		}
		if i, ok := t.index[l.AirbnbName]; ok {
			t.entries[i].Nickname = l.InternalName
			continue
		}
		t.index[l.AirbnbName] = len(t.entries)
		t.entries = append(t.entries, Entry{Title: l.AirbnbName, Nickname: l.InternalName})
	}
	return t
}

// Len returns the number of entries
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

func (t *Table) all() []Entry {
	if t == nil {
		return nil
	}
	return t.entries
}

func (t *Table) lookup(title string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[title]
	if !ok {
		return "", false
	}
	return t.entries[i].Nickname, true
}

// Resolver maps scraped listing titles to nicknames
type Resolver struct {
	table       *Table
	mode        string
	domainWords map[string]bool
}

// NewResolver creates a Resolver. mode is config.NicknameModeStrict or config.NicknameModeLoose.
func NewResolver(table *Table, mode string, domainWords []string) *Resolver {
	words := make(map[string]bool, len(domainWords))
	for _, w := range domainWords {
		words[fold(w)] = true
	}
	return &Resolver{table: table, mode: mode, domainWords: words}
}

// Resolve returns the nickname for a title. In strict mode ok is false when nothing matches; in loose
// mode a non-empty query always resolves, falling back to its first 15 characters.
func (r *Resolver) Resolve(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}

	if nick, ok := r.table.lookup(query); ok {
		return nick, true
	}

	if r.mode == config.NicknameModeLoose {
		if nick, ok := r.substringMatch(query); ok {
			return nick, true
		}
		return truncateRunes(query, looseFallbackLength), true
	}

	return r.fuzzyMatch(query)
}

// fuzzyMatch accepts the first entry sharing two domain words with the query, or containing it
func (r *Resolver) fuzzyMatch(query string) (string, bool) {
	folded := fold(query)
	queryWords := r.domainTokens(folded)

	for _, e := range r.table.all() {
		title := fold(e.Title)
		if sharedCount(queryWords, r.domainTokens(title)) >= minSharedWords {
			return e.Nickname, true
		}
		if strings.Contains(title, folded) || strings.Contains(folded, title) {
			return e.Nickname, true
		}
	}
	return "", false
}

func (r *Resolver) substringMatch(query string) (string, bool) {
	folded := fold(query)
	for _, e := range r.table.all() {
		title := fold(e.Title)
		if strings.Contains(title, folded) || strings.Contains(folded, title) {
			return e.Nickname, true
		}
	}
	return "", false
}

func (r *Resolver) domainTokens(folded string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(folded) {
		if r.domainWords[tok] {
			tokens[tok] = true
		}
	}
	return tokens
}

func sharedCount(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

// fold uses a fresh Caser per call; Casers carry state and must not be shared
func fold(s string) string {
	return cases.Fold().String(s)
}

// Shorten cuts s to n characters and marks the cut with "..."
func Shorten(s string, n int) string {
	if short := truncateRunes(s, n); short != s {
		return short + "..."
	}
	return s
}

// truncateRunes returns the first n characters of s
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
