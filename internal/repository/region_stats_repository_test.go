package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plataa/triagedash/internal/repository/models"
)

func newMockRepository(t *testing.T) (*RegionStatsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRegionStatsRepository(db), mock
}

func TestReplaceRegionStats_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	stats := []models.RegionStat{
		{Location: "Acre", Population: 10, AutismCount: 1, AutismPercentage: 10},
		{Location: "Bahia", Population: 20, AutismCount: 1, AutismPercentage: 5},
	}
	insert := regexp.QuoteMeta("INSERT INTO region_autism_stats")

	t.Run("begin fails", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		err := repo.ReplaceRegionStats(ctx, stats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin replace region_autism_stats")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete fails", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM region_autism_stats").WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		err := repo.ReplaceRegionStats(ctx, stats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clear region_autism_stats")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second insert fails", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM region_autism_stats").WillReturnResult(sqlmock.NewResult(0, 3))
		prep := mock.ExpectPrepare(insert)
		prep.ExpectExec().WithArgs("Acre", int64(10), int64(1), float64(10)).WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WithArgs("Bahia", int64(20), int64(1), float64(5)).WillReturnError(errors.New("constraint failed"))
		mock.ExpectRollback()

		err := repo.ReplaceRegionStats(ctx, stats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert region_autism_stats row 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM region_autism_stats").WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(insert)
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceRegionStats(ctx, stats))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReplaceImport_SingleTransaction(t *testing.T) {
	ctx := context.Background()
	imp := models.RegionImport{
		RegionStats: []models.RegionStat{{Location: "Acre", Population: 10, AutismCount: 1, AutismPercentage: 10}},
		StudentRace: []models.StudentRace{{Location: "Brasil", Race: "Branca", Total: 900, Autism: 9}},
	}

	t.Run("second table fails", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM region_autism_stats").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO region_autism_stats")).
			ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM student_autism_race").WillReturnError(errors.New("no such table"))
		mock.ExpectRollback()

		err := repo.ReplaceImport(ctx, imp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clear student_autism_race")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil residents skip the resident table", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM region_autism_stats").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO region_autism_stats")).
			ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM student_autism_race").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO student_autism_race")).
			ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceImport(ctx, imp))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListRegionStats_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT location, population").WillReturnError(errors.New("no such table"))

	_, err := repo.ListRegionStats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListRegionStats")
	assert.NoError(t, mock.ExpectationsWereMet())
}
