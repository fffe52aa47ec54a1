package deck

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

const (
	notetypeRadical    = "WaniKani Radical Model"
	notetypeKanji      = "WaniKani Kanji Model"
	notetypeVocabulary = "WaniKani Vocabulary Model"
)

var deckFileNames = map[Kind]string{
	KindRadical:    "WaniKani_Radical_Deck.tsv",
	KindKanji:      "WaniKani_Kanji_Deck.tsv",
	KindVocabulary: "WaniKani_Vocabulary_Deck.tsv",
	KindComplete:   "WaniKani_Complete_Deck.tsv",
}

// Renderer queries card data and writes the four deck files: one per
// subject type plus a combined deck.
type Renderer struct {
	src  Source
	dir  string
	name string
	log  *zap.Logger
}

func NewRenderer(src Source, cfg common.DecksConfig, log *zap.Logger) *Renderer {
	return &Renderer{src: src, dir: cfg.Dir, name: cfg.Name, log: log}
}

// RenderDecks produces every deck file and reports what it wrote. Files are
// regenerated from scratch each run; rendering twice from the same rows
// yields identical decks.
func (r *Renderer) RenderDecks(ctx context.Context, persistedRows int64) ([]File, error) {
	r.log.Info("rendering decks", zap.Int64("subjects", persistedRows))

	radicals, err := r.src.Radicals(ctx)
	if err != nil {
		return nil, err
	}
	kanji, err := r.src.Kanji(ctx)
	if err != nil {
		return nil, err
	}
	vocab, err := r.src.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}

	radicalNotes := make([][]string, 0, len(radicals))
	for _, c := range radicals {
		radicalNotes = append(radicalNotes, radicalFields(c))
	}
	kanjiNotes := make([][]string, 0, len(kanji))
	for _, c := range kanji {
		kanjiNotes = append(kanjiNotes, kanjiFields(c))
	}
	vocabNotes := make([][]string, 0, len(vocab))
	for _, c := range vocab {
		vocabNotes = append(vocabNotes, vocabFields(c))
	}

	var files []File

	f, err := r.writeTyped(KindRadical, notetypeRadical, "Radicals", radicalNotes)
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	f, err = r.writeTyped(KindKanji, notetypeKanji, "Kanji", kanjiNotes)
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	f, err = r.writeTyped(KindVocabulary, notetypeVocabulary, "Vocabulary", vocabNotes)
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	f, err = r.writeComplete(radicalNotes, kanjiNotes, vocabNotes)
	if err != nil {
		return nil, err
	}
	files = append(files, f)

	return files, nil
}

// writeTyped writes a single-notetype deck file with file-level directives.
func (r *Renderer) writeTyped(kind Kind, notetype, subdeck string, notes [][]string) (File, error) {
	path := filepath.Join(r.dir, deckFileNames[kind])
	directives := []string{
		"#separator:tab",
		"#html:true",
		"#notetype:" + notetype,
		"#deck:" + r.name + "::" + subdeck,
		"#guid column:1",
	}
	size, err := writeDeckFile(path, directives, notes)
	if err != nil {
		return File{}, common.WrapError(common.KindRender, err)
	}
	r.log.Info("wrote deck file",
		zap.String("deck", string(kind)),
		zap.Int("notes", len(notes)),
		zap.Int64("bytes", size))
	return File{Kind: kind, Path: path, Notes: len(notes), Bytes: size}, nil
}

// writeComplete writes the combined deck: notetype and target deck ride
// along as columns so one import restores everything.
func (r *Renderer) writeComplete(radicals, kanji, vocab [][]string) (File, error) {
	path := filepath.Join(r.dir, deckFileNames[KindComplete])
	directives := []string{
		"#separator:tab",
		"#html:true",
		"#guid column:1",
		"#notetype column:2",
		"#deck column:3",
	}

	var notes [][]string
	add := func(rows [][]string, notetype, subdeck string) {
		for _, fields := range rows {
			combined := make([]string, 0, len(fields)+2)
			combined = append(combined, fields[0], notetype, r.name+"::"+subdeck)
			combined = append(combined, fields[1:]...)
			notes = append(notes, combined)
		}
	}
	add(radicals, notetypeRadical, "Radicals")
	add(kanji, notetypeKanji, "Kanji")
	add(vocab, notetypeVocabulary, "Vocabulary")

	size, err := writeDeckFile(path, directives, notes)
	if err != nil {
		return File{}, common.WrapError(common.KindRender, err)
	}
	r.log.Info("wrote deck file",
		zap.String("deck", string(KindComplete)),
		zap.Int("notes", len(notes)),
		zap.Int64("bytes", size))
	return File{Kind: KindComplete, Path: path, Notes: len(notes), Bytes: size}, nil
}

func radicalFields(c RadicalCard) []string {
	radical := c.Radical
	if radical == "" {
		radical = "N/A"
	}
	return []string{
		NoteGUID(c.ID),
		radical,
		strings.Join(c.Meanings, ", "),
		ApplyTextStyling(c.MeaningMnemonic),
		strconv.Itoa(c.Level),
		strconv.FormatInt(c.ID, 10),
	}
}

func kanjiFields(c KanjiCard) []string {
	return []string{
		NoteGUID(c.ID),
		c.Kanji,
		strings.Join(c.Meanings, ", "),
		strings.Join(BoldenPrimaryReading(c.OnyomiReadings, c.PrimaryReading), ", "),
		strings.Join(BoldenPrimaryReading(c.KunyomiReadings, c.PrimaryReading), ", "),
		ApplyTextStyling(c.MeaningMnemonic),
		ApplyTextStyling(c.ReadingMnemonic),
		strconv.Itoa(c.Level),
		strconv.FormatInt(c.ID, 10),
	}
}

func vocabFields(c VocabCard) []string {
	return []string{
		NoteGUID(c.ID),
		c.Word,
		strings.Join(c.Meanings, ", "),
		strings.Join(c.Readings, ", "),
		strings.Join(c.AuxiliaryMeanings, ", "),
		ApplyTextStyling(c.MeaningMnemonic),
		ApplyTextStyling(c.ReadingMnemonic),
		strconv.Itoa(c.Level),
		strconv.FormatInt(c.ID, 10),
	}
}
