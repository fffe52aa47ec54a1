package store

import (
	"context"
	"fmt"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/deck"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
)

// The deck queries project the subjects table into card shape, in study
// order: level ascending, then id.

func (s *Store) subjectsByObject(ctx context.Context, object string) ([]Subject, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var subs []Subject
	if err := db.Where("object = ?", object).Order("level asc, id asc").Find(&subs).Error; err != nil {
		return nil, common.WrapError(common.KindPersistence,
			fmt.Errorf("query %s subjects: %w", object, err))
	}
	return subs, nil
}

func (s *Store) Radicals(ctx context.Context) ([]deck.RadicalCard, error) {
	subs, err := s.subjectsByObject(ctx, subject.ObjectRadical)
	if err != nil {
		return nil, err
	}
	cards := make([]deck.RadicalCard, 0, len(subs))
	for _, r := range subs {
		cards = append(cards, deck.RadicalCard{
			ID:              r.ID,
			Level:           r.Level,
			Radical:         r.Characters,
			Meanings:        r.Meanings,
			MeaningMnemonic: r.MeaningMnemonic,
		})
	}
	return cards, nil
}

func (s *Store) Kanji(ctx context.Context) ([]deck.KanjiCard, error) {
	subs, err := s.subjectsByObject(ctx, subject.ObjectKanji)
	if err != nil {
		return nil, err
	}
	cards := make([]deck.KanjiCard, 0, len(subs))
	for _, r := range subs {
		cards = append(cards, deck.KanjiCard{
			ID:              r.ID,
			Level:           r.Level,
			Kanji:           r.Slug,
			PrimaryReading:  r.PrimaryReading,
			Meanings:        r.Meanings,
			OnyomiReadings:  r.OnyomiReadings,
			KunyomiReadings: r.KunyomiReadings,
			MeaningMnemonic: r.MeaningMnemonic,
			ReadingMnemonic: r.ReadingMnemonic,
		})
	}
	return cards, nil
}

func (s *Store) Vocabulary(ctx context.Context) ([]deck.VocabCard, error) {
	subs, err := s.subjectsByObject(ctx, subject.ObjectVocabulary)
	if err != nil {
		return nil, err
	}
	cards := make([]deck.VocabCard, 0, len(subs))
	for _, r := range subs {
		cards = append(cards, deck.VocabCard{
			ID:                r.ID,
			Level:             r.Level,
			Word:              r.Slug,
			Meanings:          r.Meanings,
			Readings:          r.Readings,
			AuxiliaryMeanings: r.AuxiliaryMeanings,
			MeaningMnemonic:   r.MeaningMnemonic,
			ReadingMnemonic:   r.ReadingMnemonic,
		})
	}
	return cards, nil
}
