package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
)

// SaveRun archives a finished run and its stage reports.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	run := PipelineRun{
		RunUUID:      res.RunID,
		Status:       string(res.Status),
		FailedStage:  string(res.FailedStage),
		UseCache:     res.Params.UseCache,
		MaxCacheAge:  res.Params.MaxCacheAge.String(),
		ForceRefresh: res.Params.ForceRefresh,
		CacheHit:     res.CacheHit,
		CachePath:    res.CachePath,
		RowCount:     res.RowCount,
		DeckCount:    len(res.DeckFiles),
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
	}
	stages := make([]StageRun, 0, len(res.Stages))
	for _, sr := range res.Stages {
		rec := StageRun{
			RunUUID:  res.RunID,
			Stage:    string(sr.Stage),
			Status:   string(sr.Status),
			Attempts: sr.Attempts,
			Detail:   sr.Detail,
		}
		if sr.Err != nil {
			rec.ErrorKind = sr.Err.Kind.String()
			rec.ErrorMessage = sr.Err.Message
		}
		stages = append(stages, rec)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(stages) == 0 {
			return nil
		}
		return tx.Create(&stages).Error
	})
	if err != nil {
		return common.WrapError(common.KindPersistence, fmt.Errorf("save run %s: %w", res.RunID, err))
	}
	return nil
}

// RecentRuns lists the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]PipelineRun, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	var runs []PipelineRun
	if err := db.Order("id desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, common.WrapError(common.KindPersistence, fmt.Errorf("list runs: %w", err))
	}
	return runs, nil
}

// RunDetail fetches one run and its stage reports by full or short uuid.
func (s *Store) RunDetail(ctx context.Context, runUUID string) (*PipelineRun, []StageRun, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	var run PipelineRun
	err = db.Where("run_uuid = ?", runUUID).Take(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Where("run_uuid LIKE ?", runUUID+"%").Take(&run).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, common.NewError(common.KindValidation, "run %s not found", runUUID)
	}
	if err != nil {
		return nil, nil, common.WrapError(common.KindPersistence, fmt.Errorf("load run %s: %w", runUUID, err))
	}

	var stages []StageRun
	if err := db.Where("run_uuid = ?", run.RunUUID).Order("id asc").Find(&stages).Error; err != nil {
		return nil, nil, common.WrapError(common.KindPersistence, fmt.Errorf("load run stages: %w", err))
	}
	return &run, stages, nil
}
