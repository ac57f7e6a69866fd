package summary

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/chat-digest/internal/conversation"
)

const (
	// MinLength and MaxLength bound every per-turn summary, in tokens
	MinLength = 10
	MaxLength = 50

	unknownDate    = "Unknown date"
	defaultWorkers = 4
)

// Summarizer produces a short abstractive summary of a message body
type Summarizer interface {
	// Summarize returns a summary of text between minLen and maxLen tokens long.
	// Implementations must decode deterministically.
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// Composer renders reconstructed conversation entries as a narrative
type Composer struct {
	summarizer Summarizer
	workers    int
}

// Option configures a Composer
type Option func(*Composer)

// WithWorkers sets how many entries are summarized at once
func WithWorkers(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewComposer creates a Composer backed by the given summarizer
func NewComposer(summarizer Summarizer, opts ...Option) *Composer {
	c := &Composer{
		summarizer: summarizer,
		workers:    defaultWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose summarizes every entry and joins the rendered sentences with a
// single space, in entry order. Any summarizer failure fails the whole call.
func (c *Composer) Compose(ctx context.Context, entries []conversation.Entry) (string, error) {
	sentences, err := c.Sentences(ctx, entries)
	if err != nil {
		return "", err
	}
	return strings.Join(sentences, " "), nil
}

// Sentences returns one rendered sentence per entry, in entry order
func (c *Composer) Sentences(ctx context.Context, entries []conversation.Entry) ([]string, error) {
	sentences := make([]string, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, entry := range entries {
		if isBlank(entry.Message) {
			sentences[i] = renderSilent(entry)
			continue
		}
		g.Go(func() error {
			summary, err := c.summarizer.Summarize(ctx, entry.Message, MinLength, MaxLength)
			if err != nil {
				return fmt.Errorf("summarizing entry %d (%s at %s): %w", i, entry.Speaker, entry.Time, err)
			}
			sentences[i] = render(entry, summary)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sentences, nil
}

func render(e conversation.Entry, summary string) string {
	summary = strings.TrimSuffix(strings.TrimSpace(summary), ".")
	return fmt.Sprintf("On %s, at %s, %s mentioned that %s.", dateOf(e), e.Time, e.Speaker, summary)
}

// renderSilent covers turns with no message text, which are never summarized
func renderSilent(e conversation.Entry) string {
	return fmt.Sprintf("On %s, at %s, %s said nothing.", dateOf(e), e.Time, e.Speaker)
}

func dateOf(e conversation.Entry) string {
	if e.Date == "" {
		return unknownDate
	}
	return e.Date
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
