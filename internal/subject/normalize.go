package subject

import (
	"context"
	"encoding/json"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

// apiSubject mirrors one element of the raw payload: the envelope fields
// plus the nested data object, straight off api.wanikani.com/v2/subjects.
type apiSubject struct {
	ID            int64  `json:"id"`
	Object        string `json:"object"`
	URL           string `json:"url"`
	DataUpdatedAt string `json:"data_updated_at"`
	Data          struct {
		CreatedAt   string  `json:"created_at"`
		Level       int     `json:"level"`
		Slug        string  `json:"slug"`
		HiddenAt    *string `json:"hidden_at"`
		DocumentURL string  `json:"document_url"`
		Characters  *string `json:"characters"`
		Meanings    []struct {
			Meaning string `json:"meaning"`
			Primary bool   `json:"primary"`
		} `json:"meanings"`
		AuxiliaryMeanings []struct {
			Meaning string `json:"meaning"`
		} `json:"auxiliary_meanings"`
		Readings []struct {
			Reading string `json:"reading"`
			Primary bool   `json:"primary"`
			Type    string `json:"type"`
		} `json:"readings"`
		ComponentSubjectIDs       []int64 `json:"component_subject_ids"`
		AmalgamationSubjectIDs    []int64 `json:"amalgamation_subject_ids"`
		VisuallySimilarSubjectIDs []int64 `json:"visually_similar_subject_ids"`
		MeaningMnemonic           string  `json:"meaning_mnemonic"`
		ReadingMnemonic           string  `json:"reading_mnemonic"`
		LessonPosition            int     `json:"lesson_position"`
		SpacedRepetitionSystemID  int64   `json:"spaced_repetition_system_id"`
		PartsOfSpeech             []string `json:"parts_of_speech"`
		ContextSentences          []Sentence `json:"context_sentences"`
		PronunciationAudios       []struct {
			URL string `json:"url"`
		} `json:"pronunciation_audios"`
		CharacterImages []struct {
			URL string `json:"url"`
		} `json:"character_images"`
	} `json:"data"`
}

// Normalizer flattens raw subject payloads into Rows.
type Normalizer struct{}

// Normalize parses the raw JSON array of subjects. Malformed JSON, an empty
// payload, or a subject missing its identity are validation failures; there
// is no partial output.
func (Normalizer) Normalize(ctx context.Context, payload []byte) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, common.NewError(common.KindValidation, "empty subject payload")
	}

	var raw []apiSubject
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, common.NewError(common.KindValidation, "decode subject payload: %v", err)
	}
	if len(raw) == 0 {
		return nil, common.NewError(common.KindValidation, "subject payload contains no subjects")
	}

	rows := make(Table, 0, len(raw))
	for i, s := range raw {
		if s.ID <= 0 || s.Object == "" {
			return nil, common.NewError(common.KindValidation,
				"subject at index %d missing id or object type", i)
		}
		rows = append(rows, flatten(s))
	}
	return rows, nil
}

func flatten(s apiSubject) Row {
	d := s.Data
	row := Row{
		ID:                       s.ID,
		Object:                   s.Object,
		URL:                      s.URL,
		DataUpdatedAt:            s.DataUpdatedAt,
		CreatedAt:                d.CreatedAt,
		Level:                    d.Level,
		Slug:                     d.Slug,
		HiddenAt:                 deref(d.HiddenAt),
		DocumentURL:              d.DocumentURL,
		Characters:               deref(d.Characters),
		LessonPosition:           d.LessonPosition,
		SpacedRepetitionSystemID: d.SpacedRepetitionSystemID,
		MeaningMnemonic:          d.MeaningMnemonic,
		ReadingMnemonic:          d.ReadingMnemonic,
	}

	for _, m := range d.Meanings {
		row.Meanings = append(row.Meanings, m.Meaning)
	}
	for _, m := range d.AuxiliaryMeanings {
		row.AuxiliaryMeanings = append(row.AuxiliaryMeanings, m.Meaning)
	}

	switch s.Object {
	case ObjectKanji, ObjectVocabulary:
		for _, r := range d.Readings {
			row.Readings = append(row.Readings, r.Reading)
		}
		row.ComponentSubjectIDs = d.ComponentSubjectIDs
		row.AmalgamationSubjectIDs = d.AmalgamationSubjectIDs
		row.VisuallySimilarSubjectIDs = d.VisuallySimilarSubjectIDs
	}

	if s.Object == ObjectKanji {
		for _, r := range d.Readings {
			switch r.Type {
			case "onyomi":
				row.OnyomiReadings = append(row.OnyomiReadings, r.Reading)
			case "kunyomi":
				row.KunyomiReadings = append(row.KunyomiReadings, r.Reading)
			}
			if r.Primary && row.PrimaryReading == "" {
				row.PrimaryReading = r.Reading
			}
		}
	}

	switch s.Object {
	case ObjectVocabulary:
		row.PartsOfSpeech = d.PartsOfSpeech
		row.ContextSentences = d.ContextSentences
		for _, a := range d.PronunciationAudios {
			row.PronunciationAudios = append(row.PronunciationAudios, a.URL)
		}
	case ObjectRadical:
		for _, img := range d.CharacterImages {
			row.CharacterImages = append(row.CharacterImages, img.URL)
		}
	}

	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
