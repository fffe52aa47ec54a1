// Package deck turns persisted subjects into Anki-importable TSV deck files.
package deck

import "context"

// Kind names one of the four generated decks.
type Kind string

const (
	KindRadical    Kind = "radical"
	KindKanji      Kind = "kanji"
	KindVocabulary Kind = "vocabulary"
	KindComplete   Kind = "complete"
)

// File describes one written deck file.
type File struct {
	Kind  Kind
	Path  string
	Notes int
	Bytes int64
}

// RadicalCard is the radical deck projection: front is the glyph (or N/A
// for image-only radicals), back is meanings plus mnemonic.
type RadicalCard struct {
	ID              int64
	Level           int
	Radical         string
	Meanings        []string
	MeaningMnemonic string
}

type KanjiCard struct {
	ID              int64
	Level           int
	Kanji           string
	PrimaryReading  string
	Meanings        []string
	OnyomiReadings  []string
	KunyomiReadings []string
	MeaningMnemonic string
	ReadingMnemonic string
}

type VocabCard struct {
	ID                int64
	Level             int
	Word              string
	Meanings          []string
	Readings          []string
	AuxiliaryMeanings []string
	MeaningMnemonic   string
	ReadingMnemonic   string
}

// Source supplies card data in deck order (level ascending, then id).
type Source interface {
	Radicals(ctx context.Context) ([]RadicalCard, error)
	Kanji(ctx context.Context) ([]KanjiCard, error)
	Vocabulary(ctx context.Context) ([]VocabCard, error)
}
