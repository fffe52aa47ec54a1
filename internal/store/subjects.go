package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
)

const insertBatchSize = 200

// ReplaceSubjects swaps the whole subjects table for the given rows inside
// one transaction. Either the new dataset lands completely or the old one
// survives untouched.
func (s *Store) ReplaceSubjects(ctx context.Context, rows subject.Table) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]Subject, 0, len(rows))
	for _, r := range rows {
		records = append(records, toRecord(r))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Subject{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return 0, common.WrapError(common.KindPersistence, fmt.Errorf("replace subjects: %w", err))
	}

	s.log.Info("replaced subjects", zap.Int("rows", len(records)))
	return int64(len(records)), nil
}

// SubjectCount reports how many subjects are currently loaded.
func (s *Store) SubjectCount(ctx context.Context) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Model(&Subject{}).Count(&n).Error; err != nil {
		return 0, common.WrapError(common.KindPersistence, fmt.Errorf("count subjects: %w", err))
	}
	return n, nil
}
