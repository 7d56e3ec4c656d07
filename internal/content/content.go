// Package content holds the per-dimension interview decks: opening questions,
// follow-up prompts, question cards, finalize thresholds, and the
// deterministic default findings used when the generative backend is
// unavailable. Decks are data, not behavior; the shipped set is embedded and
// can be replaced wholesale from a YAML file.
package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

//go:embed decks.yaml
var embeddedDecks []byte

// Deck styles. Exchange decks finalize after a fixed number of free-text
// exchanges; card decks finalize once every card has been answered.
const (
	StyleExchange = "exchange"
	StyleCards    = "cards"
)

// Card is one multiple-choice style question. Options are suggestions; free
// text answers are accepted as well.
type Card struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
}

// Defaults is the deterministic payload a handler falls back to when
// finalization cannot reach the backend.
type Defaults struct {
	Summary  string         `yaml:"summary"`
	Findings map[string]any `yaml:"findings"`
}

// Deck drives one dimension's interview.
type Deck struct {
	Style     string   `yaml:"style"`
	Opening   string   `yaml:"opening"`
	Followups []string `yaml:"followups"`
	Cards     []Card   `yaml:"cards"`
	Threshold int      `yaml:"threshold"`
	Defaults  Defaults `yaml:"defaults"`
}

// FinalizeAfter returns the handler call on which the deck finalizes: the
// configured exchange threshold for exchange decks, or one call per card
// plus the opening for card decks.
func (d Deck) FinalizeAfter() int {
	if d.Style == StyleCards {
		return len(d.Cards) + 1
	}
	return d.Threshold
}

// Set maps every dimension to its deck.
type Set struct {
	decks map[interview.Dimension]Deck
}

type decksFile struct {
	Dimensions map[string]Deck `yaml:"dimensions"`
}

// Default parses the embedded deck set.
func Default() (*Set, error) {
	return parse(embeddedDecks)
}

// LoadFile reads a replacement deck set from disk.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decks file: %w", err)
	}
	return parse(raw)
}

// Load returns the deck set from path when provided, otherwise the embedded
// defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Deck returns the deck for d.
func (s *Set) Deck(d interview.Dimension) Deck {
	return s.decks[d]
}

func parse(raw []byte) (*Set, error) {
	var file decksFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse decks: %w", err)
	}

	decks := make(map[interview.Dimension]Deck, len(file.Dimensions))
	for key, deck := range file.Dimensions {
		d, ok := interview.ParseDimension(key)
		if !ok {
			return nil, fmt.Errorf("decks: unknown dimension %q", key)
		}
		if err := validateDeck(d, deck); err != nil {
			return nil, err
		}
		decks[d] = deck
	}

	for _, d := range interview.AllDimensions() {
		if _, ok := decks[d]; !ok {
			return nil, fmt.Errorf("decks: missing dimension %q", d)
		}
	}

	return &Set{decks: decks}, nil
}

func validateDeck(d interview.Dimension, deck Deck) error {
	if deck.Opening == "" {
		return fmt.Errorf("decks: %s has no opening question", d)
	}
	if deck.Defaults.Summary == "" {
		return fmt.Errorf("decks: %s has no default summary", d)
	}
	switch deck.Style {
	case StyleExchange:
		if deck.Threshold < 1 {
			return fmt.Errorf("decks: %s exchange threshold must be >= 1", d)
		}
		if len(deck.Followups) == 0 {
			return fmt.Errorf("decks: %s has no fallback follow-ups", d)
		}
	case StyleCards:
		if len(deck.Cards) == 0 {
			return fmt.Errorf("decks: %s has no cards", d)
		}
	default:
		return fmt.Errorf("decks: %s has unknown style %q", d, deck.Style)
	}
	return nil
}
