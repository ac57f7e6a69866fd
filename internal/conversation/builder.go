package conversation

import (
	"context"
	"fmt"
	"strings"
)

// state is the position of the scan relative to the turn structure
type state int

const (
	// awaitingTurn: no timestamp has opened a turn yet
	awaitingTurn state = iota
	// inTurn: the tail entry accepts message text
	inTurn
)

// action is what the builder does with a single line
type action int

const (
	actionInert action = iota
	actionOpenTurn
	actionContinueTurn
	actionSkip
)

// Builder reconstructs conversation entries from extracted text lines
type Builder struct {
	names NameExtractor
}

// NewBuilder creates a Builder that attributes speakers with the given extractor
func NewBuilder(names NameExtractor) *Builder {
	return &Builder{names: names}
}

// scan holds the state of a single Build call
type scan struct {
	names   NameExtractor
	state   state
	speaker string
	date    string
	entries []Entry
	tail    int // index of the only mutable entry, -1 while entries is empty
	prev    string
}

// Build performs one forward pass over lines and returns the entries in the
// order their timestamp lines appeared. Lines that match neither grammar are
// treated as inert or as message text; only a failing NameExtractor aborts.
func (b *Builder) Build(ctx context.Context, lines []string) ([]Entry, error) {
	s := &scan{
		names:   b.names,
		entries: make([]Entry, 0),
		tail:    -1,
	}

	for i, raw := range lines {
		line := Classify(raw)
		if err := s.step(ctx, i, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		s.prev = line.Text
	}

	return s.entries, nil
}

// decide is the per-line decision table
func (s *scan) decide(i int, line Line) action {
	switch {
	case line.HasTime() && i > 0:
		return actionOpenTurn
	case s.state == awaitingTurn:
		return actionInert
	case line.Text == "":
		return actionSkip
	default:
		return actionContinueTurn
	}
}

func (s *scan) step(ctx context.Context, i int, line Line) error {
	if line.HasDate() {
		s.date = line.Date
	}

	switch s.decide(i, line) {
	case actionOpenTurn:
		names, err := s.probe(ctx, s.prev)
		if err != nil {
			return fmt.Errorf("attributing speaker: %w", err)
		}
		s.speaker = Sentinel
		if len(names) > 0 {
			s.speaker = names[0]
		}
		s.open(Entry{Speaker: s.speaker, Time: line.Time, Date: s.date})

	case actionContinueTurn:
		names, err := s.probe(ctx, line.Text)
		if err != nil {
			return fmt.Errorf("checking for speaker label: %w", err)
		}
		// A bare name is a speaker label whose timestamp went unrecognized
		if len(names) > 0 {
			return nil
		}
		s.appendText(line.Text)
	}

	return nil
}

// open appends a new entry, freezing the previous tail
func (s *scan) open(e Entry) {
	s.entries = append(s.entries, e)
	s.tail = len(s.entries) - 1
	s.state = inTurn
}

func (s *scan) appendText(text string) {
	s.entries[s.tail].Message += text + " "
}

// probe runs name extraction, framing short fragments in a sentence so the
// extractor has grammatical context to recognize a name.
func (s *scan) probe(ctx context.Context, text string) ([]string, error) {
	return s.names.ExtractPersonNames(ctx, ProbeText(text))
}

// ProbeText returns the text handed to the name extractor for a line
func ProbeText(text string) string {
	if len(strings.Fields(text)) <= 2 {
		return fmt.Sprintf("Person %s went to the store.", text)
	}
	return text
}
