package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"venchmarks/internal/models"
)

func (r *Repository) ListBenchmarks(ctx context.Context) ([]models.Benchmark, error) {
	var benchmarks []models.Benchmark
	err := r.db.SelectContext(ctx, &benchmarks, `
		SELECT id, name, language, repository, source_code
		FROM benchmarks
		ORDER BY name`)
	return benchmarks, err
}

func (r *Repository) GetBenchmarkByName(ctx context.Context, name string) (*models.Benchmark, error) {
	var b models.Benchmark
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`
		SELECT id, name, language, repository, source_code
		FROM benchmarks
		WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("benchmark %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const resultSelect = `
	SELECT
		r.id,
		r.date,
		r.in_name,
		r.out_name,
		r.in_keys,
		r.out_values,
		r.compile_ms,
		r.compile_command,
		r.run_command,
		r.machine_id,
		m.name AS machine_name,
		r.benchmark_id,
		b.name AS benchmark_name,
		r.fixed_parameters,
		r.mean,
		r.owner,
		r.created_at
	FROM benchmark_results r
	JOIN machines m ON m.id = r.machine_id
	JOIN benchmarks b ON b.id = r.benchmark_id
`

// ListResults returns every result, newest first.
func (r *Repository) ListResults(ctx context.Context) ([]models.BenchmarkResult, error) {
	var results []models.BenchmarkResult
	err := r.db.SelectContext(ctx, &results, resultSelect+`ORDER BY r.date DESC, r.id DESC`)
	return results, err
}

func (r *Repository) ListResultsByBenchmark(ctx context.Context, benchmarkID int) ([]models.BenchmarkResult, error) {
	var results []models.BenchmarkResult
	err := r.db.SelectContext(ctx, &results, r.db.Rebind(resultSelect+`
		WHERE r.benchmark_id = ?
		ORDER BY r.date DESC, r.id DESC`), benchmarkID)
	return results, err
}

// InsertResults stores results in a single transaction and fills in their IDs.
func (r *Repository) InsertResults(ctx context.Context, results []models.BenchmarkResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO benchmark_results (
			date, in_name, out_name, in_keys, out_values,
			compile_ms, compile_command, run_command,
			machine_id, benchmark_id, fixed_parameters, mean, owner, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range results {
		res := &results[i]
		err := stmt.QueryRowxContext(ctx,
			res.Date, res.InName, res.OutName, res.InKeys, res.OutValues,
			res.CompileMs, res.CompileCommand, res.RunCommand,
			res.MachineID, res.BenchmarkID, res.FixedParameters, res.Mean, res.Owner, res.CreatedAt,
		).Scan(&res.ID)
		if err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}
