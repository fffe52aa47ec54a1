// Package subject holds the normalized WaniKani subject model shared by the
// persistence and rendering layers.
package subject

// Sentence is one example sentence pair on a vocabulary subject.
type Sentence struct {
	EN string `json:"en"`
	JA string `json:"ja"`
}

// Row is one subject flattened out of the API envelope. Timestamps stay as
// the RFC 3339 strings the API sends; nothing downstream does date math on
// them.
type Row struct {
	ID            int64
	Object        string
	URL           string
	DataUpdatedAt string

	CreatedAt   string
	Level       int
	Slug        string
	HiddenAt    string
	DocumentURL string
	Characters  string

	Meanings          []string
	AuxiliaryMeanings []string

	LessonPosition           int
	SpacedRepetitionSystemID int64

	// Reading fields apply to kanji and vocabulary; kanji additionally get
	// the onyomi/kunyomi split and a primary reading.
	Readings        []string
	OnyomiReadings  []string
	KunyomiReadings []string
	PrimaryReading  string

	ComponentSubjectIDs       []int64
	AmalgamationSubjectIDs    []int64
	VisuallySimilarSubjectIDs []int64

	MeaningMnemonic string
	ReadingMnemonic string

	// Vocabulary extras.
	PartsOfSpeech       []string
	ContextSentences    []Sentence
	PronunciationAudios []string

	// Radical extras: image URLs for radicals without a character glyph.
	CharacterImages []string
}

// Table is the normalized artifact handed from the normalize stage to the
// persist stage.
type Table []Row

// Subject object types as the API names them.
const (
	ObjectRadical    = "radical"
	ObjectKanji      = "kanji"
	ObjectVocabulary = "vocabulary"
)
