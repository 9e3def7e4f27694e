package notify

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Notifier delivers the rendered cleaner message somewhere
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Multi sends to every notifier and joins their errors
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SplitMessage splits a message into chunks of at most maxLen bytes, preferring line boundaries
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen {
			flush()
			// A single line longer than a chunk is cut on rune boundaries
			for len(line) > maxLen {
				cut := maxLen
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				if cut == 0 {
					// maxLen is shorter than the first rune; emit it whole
					_, cut = utf8.DecodeRuneInString(line)
				}
				parts = append(parts, line[:cut])
				line = line[cut:]
			}
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return parts
}
