package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
)

// Subject is the persisted form of a normalized subject. The WaniKani id is
// the primary key: the table is replaced wholesale every load, so rows keep
// no local identity or soft-delete bookkeeping. List-valued fields are
// stored as JSON columns.
type Subject struct {
	ID            int64  `gorm:"primaryKey;autoIncrement:false"`
	Object        string `gorm:"type:varchar(20);index;not null"`
	URL           string `gorm:"type:varchar(255)"`
	DataUpdatedAt string `gorm:"type:varchar(40)"`

	SubjectCreatedAt string `gorm:"column:created_at;type:varchar(40)"`
	Level            int    `gorm:"index;not null"`
	Slug             string `gorm:"type:varchar(100)"`
	HiddenAt         string `gorm:"type:varchar(40)"`
	DocumentURL      string `gorm:"type:varchar(255)"`
	Characters       string `gorm:"type:varchar(50)"`

	Meanings          []string `gorm:"serializer:json"`
	AuxiliaryMeanings []string `gorm:"serializer:json"`

	LessonPosition           int
	SpacedRepetitionSystemID int64

	Readings        []string `gorm:"serializer:json"`
	OnyomiReadings  []string `gorm:"serializer:json"`
	KunyomiReadings []string `gorm:"serializer:json"`
	PrimaryReading  string   `gorm:"type:varchar(100)"`

	ComponentSubjectIDs       []int64 `gorm:"serializer:json"`
	AmalgamationSubjectIDs    []int64 `gorm:"serializer:json"`
	VisuallySimilarSubjectIDs []int64 `gorm:"serializer:json"`

	MeaningMnemonic string `gorm:"type:text"`
	ReadingMnemonic string `gorm:"type:text"`

	PartsOfSpeech       []string           `gorm:"serializer:json"`
	ContextSentences    []subject.Sentence `gorm:"serializer:json"`
	PronunciationAudios []string           `gorm:"serializer:json"`
	CharacterImages     []string           `gorm:"serializer:json"`
}

func (Subject) TableName() string { return "wanikani_subjects" }

// PipelineRun is one orchestrated run, recorded after it finishes.
type PipelineRun struct {
	gorm.Model
	RunUUID     string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Status      string `gorm:"type:varchar(10);not null"`
	FailedStage string `gorm:"type:varchar(20)"`

	UseCache     bool
	MaxCacheAge  string `gorm:"type:varchar(30)"`
	ForceRefresh bool
	CacheHit     bool
	CachePath    string `gorm:"type:varchar(255)"`

	RowCount  int64
	DeckCount int

	StartedAt  time.Time
	FinishedAt time.Time
}

// StageRun is the per-stage outcome attached to a PipelineRun.
type StageRun struct {
	gorm.Model
	RunUUID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_run_uuid_stage"`
	Stage    string `gorm:"type:varchar(20);not null;uniqueIndex:idx_run_uuid_stage"`
	Status   string `gorm:"type:varchar(10);not null"`
	Attempts int
	Detail   string `gorm:"type:varchar(255)"`

	ErrorKind    string `gorm:"type:varchar(30)"`
	ErrorMessage string `gorm:"type:text"`
}

func toRecord(r subject.Row) Subject {
	return Subject{
		ID:                        r.ID,
		Object:                    r.Object,
		URL:                       r.URL,
		DataUpdatedAt:             r.DataUpdatedAt,
		SubjectCreatedAt:          r.CreatedAt,
		Level:                     r.Level,
		Slug:                      r.Slug,
		HiddenAt:                  r.HiddenAt,
		DocumentURL:               r.DocumentURL,
		Characters:                r.Characters,
		Meanings:                  r.Meanings,
		AuxiliaryMeanings:         r.AuxiliaryMeanings,
		LessonPosition:            r.LessonPosition,
		SpacedRepetitionSystemID:  r.SpacedRepetitionSystemID,
		Readings:                  r.Readings,
		OnyomiReadings:            r.OnyomiReadings,
		KunyomiReadings:           r.KunyomiReadings,
		PrimaryReading:            r.PrimaryReading,
		ComponentSubjectIDs:       r.ComponentSubjectIDs,
		AmalgamationSubjectIDs:    r.AmalgamationSubjectIDs,
		VisuallySimilarSubjectIDs: r.VisuallySimilarSubjectIDs,
		MeaningMnemonic:           r.MeaningMnemonic,
		ReadingMnemonic:           r.ReadingMnemonic,
		PartsOfSpeech:             r.PartsOfSpeech,
		ContextSentences:          r.ContextSentences,
		PronunciationAudios:       r.PronunciationAudios,
		CharacterImages:           r.CharacterImages,
	}
}
