package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plataa/triagedash/internal/repository/models"
)

// Schema creates the region statistics tables.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS region_autism_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		population INTEGER NOT NULL,
		autism_count INTEGER NOT NULL,
		autism_percentage REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resident_autism_sex (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		male_cases INTEGER NOT NULL DEFAULT 0,
		female_cases INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS student_autism_race (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location TEXT NOT NULL,
		race TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		autism INTEGER NOT NULL DEFAULT 0
	)`,
}

type RegionStatsRepository struct {
	db *sql.DB
}

func NewRegionStatsRepository(db *sql.DB) *RegionStatsRepository {
	return &RegionStatsRepository{db: db}
}

// ReplaceRegionStats swaps the whole statistics table in one transaction.
func (r *RegionStatsRepository) ReplaceRegionStats(ctx context.Context, stats []models.RegionStat) error {
	return r.inTx(ctx, "region_autism_stats", func(tx *sql.Tx) error {
		return replaceRegionStats(ctx, tx, stats)
	})
}

// ReplaceImport swaps every table of an import in a single transaction, so a
// failure on any table leaves all of them as they were. A nil ResidentSex
// keeps the stored resident rows.
func (r *RegionStatsRepository) ReplaceImport(ctx context.Context, imp models.RegionImport) error {
	return r.inTx(ctx, "import", func(tx *sql.Tx) error {
		if err := replaceRegionStats(ctx, tx, imp.RegionStats); err != nil {
			return err
		}
		if err := replaceStudentRace(ctx, tx, imp.StudentRace); err != nil {
			return err
		}
		if imp.ResidentSex == nil {
			return nil
		}
		return replaceResidentSex(ctx, tx, imp.ResidentSex)
	})
}

// ListRegionStats returns rows in import order.
func (r *RegionStatsRepository) ListRegionStats(ctx context.Context) ([]models.RegionStat, error) {
	const query = `
		SELECT location, population, autism_count, autism_percentage
		FROM region_autism_stats
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ListRegionStats: %w", err)
	}
	defer rows.Close()

	out := make([]models.RegionStat, 0)
	for rows.Next() {
		var s models.RegionStat
		if err := rows.Scan(&s.Location, &s.Population, &s.AutismCount, &s.AutismPercentage); err != nil {
			return nil, fmt.Errorf("scan region stat: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate region stats: %w", err)
	}
	return out, nil
}

// Totals sums population and autism cases; an empty table yields zeros.
func (r *RegionStatsRepository) Totals(ctx context.Context) (models.RegionTotals, error) {
	const query = `
		SELECT COALESCE(SUM(population), 0), COALESCE(SUM(autism_count), 0)
		FROM region_autism_stats
	`

	var out models.RegionTotals
	if err := r.db.QueryRowContext(ctx, query).Scan(&out.Population, &out.AutismCases); err != nil {
		return models.RegionTotals{}, fmt.Errorf("query Totals: %w", err)
	}
	return out, nil
}

func (r *RegionStatsRepository) ReplaceResidentSex(ctx context.Context, rows []models.ResidentSex) error {
	return r.inTx(ctx, "resident_autism_sex", func(tx *sql.Tx) error {
		return replaceResidentSex(ctx, tx, rows)
	})
}

// SexTotals sums male and female cases across locations.
func (r *RegionStatsRepository) SexTotals(ctx context.Context) (models.SexTotals, error) {
	const query = `
		SELECT COALESCE(SUM(male_cases), 0), COALESCE(SUM(female_cases), 0)
		FROM resident_autism_sex
	`

	var out models.SexTotals
	if err := r.db.QueryRowContext(ctx, query).Scan(&out.MaleCases, &out.FemaleCases); err != nil {
		return models.SexTotals{}, fmt.Errorf("query SexTotals: %w", err)
	}
	return out, nil
}

func (r *RegionStatsRepository) ReplaceStudentRace(ctx context.Context, rows []models.StudentRace) error {
	return r.inTx(ctx, "student_autism_race", func(tx *sql.Tx) error {
		return replaceStudentRace(ctx, tx, rows)
	})
}

// StudentRace returns the rows of one location in import order. An empty
// location selects the first imported one.
func (r *RegionStatsRepository) StudentRace(ctx context.Context, location string) ([]models.StudentRace, error) {
	const query = `
		SELECT location, race, total, autism
		FROM student_autism_race
		WHERE location = COALESCE(NULLIF(?, ''),
			(SELECT location FROM student_autism_race ORDER BY id LIMIT 1))
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, location)
	if err != nil {
		return nil, fmt.Errorf("query StudentRace: %w", err)
	}
	defer rows.Close()

	out := make([]models.StudentRace, 0)
	for rows.Next() {
		var s models.StudentRace
		if err := rows.Scan(&s.Location, &s.Race, &s.Total, &s.Autism); err != nil {
			return nil, fmt.Errorf("scan student race: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student race: %w", err)
	}
	return out, nil
}

func (r *RegionStatsRepository) inTx(ctx context.Context, name string, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", name, err)
	}
	return nil
}

func replaceRegionStats(ctx context.Context, tx *sql.Tx, stats []models.RegionStat) error {
	return replace(ctx, tx, "region_autism_stats",
		`INSERT INTO region_autism_stats (location, population, autism_count, autism_percentage) VALUES (?, ?, ?, ?)`,
		len(stats), func(stmt *sql.Stmt, i int) error {
			s := stats[i]
			_, err := stmt.ExecContext(ctx, s.Location, s.Population, s.AutismCount, s.AutismPercentage)
			return err
		})
}

func replaceResidentSex(ctx context.Context, tx *sql.Tx, rows []models.ResidentSex) error {
	return replace(ctx, tx, "resident_autism_sex",
		`INSERT INTO resident_autism_sex (location, male_cases, female_cases) VALUES (?, ?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			s := rows[i]
			_, err := stmt.ExecContext(ctx, s.Location, s.MaleCases, s.FemaleCases)
			return err
		})
}

func replaceStudentRace(ctx context.Context, tx *sql.Tx, rows []models.StudentRace) error {
	return replace(ctx, tx, "student_autism_race",
		`INSERT INTO student_autism_race (location, race, total, autism) VALUES (?, ?, ?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			s := rows[i]
			_, err := stmt.ExecContext(ctx, s.Location, s.Race, s.Total, s.Autism)
			return err
		})
}

// replace clears table and inserts n rows inside tx.
func replace(ctx context.Context, tx *sql.Tx, table, insert string, n int, exec func(*sql.Stmt, int) error) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
	}
	return nil
}
