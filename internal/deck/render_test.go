package deck

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

type fakeSource struct {
	radicals []RadicalCard
	kanji    []KanjiCard
	vocab    []VocabCard
	err      error
}

func (f *fakeSource) Radicals(context.Context) ([]RadicalCard, error) {
	return f.radicals, f.err
}
func (f *fakeSource) Kanji(context.Context) ([]KanjiCard, error) {
	return f.kanji, f.err
}
func (f *fakeSource) Vocabulary(context.Context) ([]VocabCard, error) {
	return f.vocab, f.err
}

func sampleSource() *fakeSource {
	return &fakeSource{
		radicals: []RadicalCard{{
			ID: 8761, Level: 1, Radical: "",
			Meanings:        []string{"Ground"},
			MeaningMnemonic: "A single <radical>ground</radical> stroke.",
		}},
		kanji: []KanjiCard{{
			ID: 440, Level: 1, Kanji: "一", PrimaryReading: "いち",
			Meanings:        []string{"One"},
			OnyomiReadings:  []string{"いち", "いつ"},
			KunyomiReadings: []string{"ひと"},
			MeaningMnemonic: "One stroke on the <radical>ground</radical>.",
			ReadingMnemonic: "Say <reading>いち</reading>.",
		}},
		vocab: []VocabCard{{
			ID: 2467, Level: 1, Word: "一",
			Meanings:          []string{"One"},
			Readings:          []string{"いち"},
			AuxiliaryMeanings: []string{"1"},
			MeaningMnemonic:   "Single kanji word.",
			ReadingMnemonic:   "Same as the kanji.",
		}},
	}
}

func newTestRenderer(t *testing.T, src Source) *Renderer {
	t.Helper()
	return NewRenderer(src, common.DecksConfig{Dir: t.TempDir(), Name: "WaniKani Japanese"}, zap.NewNop())
}

func TestRenderDecksWritesAllFour(t *testing.T) {
	r := newTestRenderer(t, sampleSource())

	files, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, files, 4)

	kinds := map[Kind]File{}
	for _, f := range files {
		kinds[f.Kind] = f
		info, statErr := os.Stat(f.Path)
		require.NoError(t, statErr)
		assert.Equal(t, info.Size(), f.Bytes)
	}
	assert.Equal(t, 1, kinds[KindRadical].Notes)
	assert.Equal(t, 1, kinds[KindKanji].Notes)
	assert.Equal(t, 1, kinds[KindVocabulary].Notes)
	assert.Equal(t, 3, kinds[KindComplete].Notes)
}

func TestRenderDecksKanjiFileContents(t *testing.T) {
	r := newTestRenderer(t, sampleSource())

	files, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)

	var kanjiFile File
	for _, f := range files {
		if f.Kind == KindKanji {
			kanjiFile = f
		}
	}
	raw, err := os.ReadFile(kanjiFile.Path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "#separator:tab\n")
	assert.Contains(t, content, "#html:true\n")
	assert.Contains(t, content, "#notetype:WaniKani Kanji Model\n")
	assert.Contains(t, content, "#deck:WaniKani Japanese::Kanji\n")
	assert.Contains(t, content, "#guid column:1\n")

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	note := lines[len(lines)-1]
	fields := strings.Split(note, "\t")
	require.Len(t, fields, 9)
	assert.Equal(t, NoteGUID(440), fields[0])
	assert.Equal(t, "一", fields[1])
	assert.Equal(t, "One", fields[2])
	assert.Equal(t, "<b>いち</b>, いつ", fields[3])
	assert.Equal(t, "ひと", fields[4])
	assert.Contains(t, fields[5], `bold;">ground</span>`)
	assert.Contains(t, fields[6], "<b>いち</b>")
	assert.Equal(t, "1", fields[7])
	assert.Equal(t, "440", fields[8])
}

func TestRenderDecksRadicalFallsBackToNA(t *testing.T) {
	r := newTestRenderer(t, sampleSource())

	files, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)

	for _, f := range files {
		if f.Kind != KindRadical {
			continue
		}
		raw, readErr := os.ReadFile(f.Path)
		require.NoError(t, readErr)
		assert.Contains(t, string(raw), "\tN/A\t")
	}
}

func TestRenderDecksCompleteCarriesNotetypeAndDeck(t *testing.T) {
	r := newTestRenderer(t, sampleSource())

	files, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)

	var complete File
	for _, f := range files {
		if f.Kind == KindComplete {
			complete = f
		}
	}
	raw, err := os.ReadFile(complete.Path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "#notetype column:2\n")
	assert.Contains(t, content, "#deck column:3\n")
	assert.Contains(t, content, "\tWaniKani Radical Model\tWaniKani Japanese::Radicals\t")
	assert.Contains(t, content, "\tWaniKani Vocabulary Model\tWaniKani Japanese::Vocabulary\t")
}

func TestRenderDecksIdempotent(t *testing.T) {
	r := newTestRenderer(t, sampleSource())

	first, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)
	second, err := r.RenderDecks(context.Background(), 3)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		a, readErr := os.ReadFile(first[i].Path)
		require.NoError(t, readErr)
		b, readErr := os.ReadFile(second[i].Path)
		require.NoError(t, readErr)
		assert.Equal(t, a, b)
	}
}

func TestRenderDecksSourceErrorPropagates(t *testing.T) {
	src := sampleSource()
	src.err = common.WrapError(common.KindPersistence, errors.New("db gone"))
	r := newTestRenderer(t, src)

	_, err := r.RenderDecks(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, common.KindOf(err).Retryable())
}

func TestSanitizeField(t *testing.T) {
	assert.Equal(t, "a b", sanitizeField("a\tb"))
	assert.Equal(t, "a<br>b", sanitizeField("a\nb"))
	assert.Equal(t, "a<br>b", sanitizeField("a\r\nb"))
}
