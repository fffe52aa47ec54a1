package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(common.StorageConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRows() subject.Table {
	return subject.Table{
		{
			ID: 8761, Object: subject.ObjectRadical, Level: 1, Slug: "ground",
			Meanings:        []string{"Ground"},
			MeaningMnemonic: "A single stroke.",
		},
		{
			ID: 440, Object: subject.ObjectKanji, Level: 2, Slug: "一",
			Characters:      "一",
			Meanings:        []string{"One"},
			Readings:        []string{"いち", "ひと"},
			OnyomiReadings:  []string{"いち"},
			KunyomiReadings: []string{"ひと"},
			PrimaryReading:  "いち",
			MeaningMnemonic: "One stroke.",
			ReadingMnemonic: "Say いち.",
		},
		{
			ID: 2467, Object: subject.ObjectVocabulary, Level: 1, Slug: "一",
			Characters:        "一",
			Meanings:          []string{"One"},
			Readings:          []string{"いち"},
			AuxiliaryMeanings: []string{"1"},
			ContextSentences:  []subject.Sentence{{EN: "One.", JA: "一。"}},
		},
	}
}

func TestReplaceSubjectsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.ReplaceSubjects(ctx, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := s.SubjectCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	kanji, err := s.Kanji(ctx)
	require.NoError(t, err)
	require.Len(t, kanji, 1)
	assert.Equal(t, int64(440), kanji[0].ID)
	assert.Equal(t, "一", kanji[0].Kanji)
	assert.Equal(t, "いち", kanji[0].PrimaryReading)
	assert.Equal(t, []string{"いち"}, kanji[0].OnyomiReadings)
	assert.Equal(t, []string{"ひと"}, kanji[0].KunyomiReadings)
}

func TestReplaceSubjectsReplacesWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceSubjects(ctx, sampleRows())
	require.NoError(t, err)

	_, err = s.ReplaceSubjects(ctx, subject.Table{
		{ID: 9999, Object: subject.ObjectRadical, Level: 3, Slug: "tree"},
	})
	require.NoError(t, err)

	count, err := s.SubjectCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	radicals, err := s.Radicals(ctx)
	require.NoError(t, err)
	require.Len(t, radicals, 1)
	assert.Equal(t, int64(9999), radicals[0].ID)
}

func TestReplaceSubjectsEmptyClearsTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceSubjects(ctx, sampleRows())
	require.NoError(t, err)

	n, err := s.ReplaceSubjects(ctx, subject.Table{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	count, err := s.SubjectCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeckQueriesOrderByLevelThenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceSubjects(ctx, subject.Table{
		{ID: 20, Object: subject.ObjectKanji, Level: 2, Slug: "b"},
		{ID: 10, Object: subject.ObjectKanji, Level: 1, Slug: "a"},
		{ID: 30, Object: subject.ObjectKanji, Level: 1, Slug: "c"},
	})
	require.NoError(t, err)

	kanji, err := s.Kanji(ctx)
	require.NoError(t, err)
	require.Len(t, kanji, 3)
	assert.Equal(t, int64(10), kanji[0].ID)
	assert.Equal(t, int64(30), kanji[1].ID)
	assert.Equal(t, int64(20), kanji[2].ID)
}

func TestVocabularyProjection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceSubjects(ctx, sampleRows())
	require.NoError(t, err)

	vocab, err := s.Vocabulary(ctx)
	require.NoError(t, err)
	require.Len(t, vocab, 1)
	assert.Equal(t, "一", vocab[0].Word)
	assert.Equal(t, []string{"1"}, vocab[0].AuxiliaryMeanings)
	assert.Equal(t, []string{"いち"}, vocab[0].Readings)
}

func TestSaveRunAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).Truncate(time.Second)
	res := &pipeline.Result{
		RunID:      "0b5e7a90-1111-2222-3333-444455556666",
		Params:     pipeline.DefaultParams(),
		Status:     pipeline.RunFailed,
		State:      pipeline.StateFailed,
		FailedStage: pipeline.StagePersist,
		CacheHit:   true,
		CachePath:  "data/wanikani_subjects_cache_2026-08-26.json",
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Second),
		Stages: []pipeline.StageReport{
			{Stage: pipeline.StageFetch, Status: pipeline.StageSuccess, Attempts: 0, Detail: "reused cached payload"},
			{Stage: pipeline.StageNormalize, Status: pipeline.StageSuccess, Attempts: 1, Detail: "3 rows"},
			{Stage: pipeline.StagePersist, Status: pipeline.StageFailed, Attempts: 3,
				Err: &pipeline.ErrorInfo{Kind: common.KindPersistence, Message: "dial tcp: refused", Attempts: 3}},
		},
	}
	require.NoError(t, s.SaveRun(ctx, res))

	runs, err := s.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "persist", runs[0].FailedStage)
	assert.True(t, runs[0].CacheHit)

	run, stages, err := s.RunDetail(ctx, "0b5e7a90")
	require.NoError(t, err)
	assert.Equal(t, res.RunID, run.RunUUID)
	require.Len(t, stages, 3)
	assert.Equal(t, "persistence_failure", stages[2].ErrorKind)
	assert.Equal(t, 3, stages[2].Attempts)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, s.SaveRun(ctx, &pipeline.Result{
			RunID:  id,
			Params: pipeline.DefaultParams(),
			Status: pipeline.RunDone,
			State:  pipeline.StateDone,
		}))
	}

	runs, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunUUID)
	assert.Equal(t, "run-b", runs[1].RunUUID)
}

func TestRunDetailNotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.RunDetail(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestUnopenableDatabaseIsRetryable(t *testing.T) {
	s := New(common.StorageConfig{
		Driver: "sqlite",
		DSN:    "/proc/impossible/wanikani.db",
	}, zap.NewNop())

	_, err := s.ReplaceSubjects(context.Background(), sampleRows())
	require.Error(t, err)
	assert.Equal(t, common.KindPersistence, common.KindOf(err))
	assert.True(t, common.KindOf(err).Retryable())
}
