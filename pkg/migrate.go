package pkg

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"venchmarks/internal/models"
)

var (
	//go:embed schema_postgres.sql
	postgresSchema string

	//go:embed schema_sqlite.sql
	sqliteSchema string

	//go:embed seed.yaml
	seedYAML []byte
)

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type seedData struct {
	Compilers []struct {
		Name       string   `yaml:"name"`
		Languages  []string `yaml:"languages"`
		SrcDate    string   `yaml:"srcdate"`
		Version    string   `yaml:"version"`
		Repository string   `yaml:"repository"`
	} `yaml:"compilers"`
	Benchmarks []struct {
		Name       string `yaml:"name"`
		Language   string `yaml:"language"`
		Repository string `yaml:"repository"`
		SourceCode string `yaml:"source_code"`
	} `yaml:"benchmarks"`
}

// Seed loads the embedded reference compilers and benchmarks. Rows whose
// name already exists are skipped.
func Seed(ctx context.Context, db *sqlx.DB) error {
	return SeedFrom(ctx, db, seedYAML)
}

func SeedFrom(ctx context.Context, db *sqlx.DB, doc []byte) error {
	var data seedData
	if err := yaml.Unmarshal(doc, &data); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range data.Compilers {
		var srcDate *time.Time
		if c.SrcDate != "" {
			t, err := time.Parse(time.DateOnly, c.SrcDate)
			if err != nil {
				return fmt.Errorf("seed compiler %s: %w", c.Name, err)
			}
			srcDate = &t
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO compilers (name, languages, src_date, version, repository)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (name) DO NOTHING`),
			c.Name, models.StringList(c.Languages), srcDate, c.Version, c.Repository)
		if err != nil {
			return fmt.Errorf("seed compiler %s: %w", c.Name, err)
		}
	}

	for _, b := range data.Benchmarks {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO benchmarks (name, language, repository, source_code)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (name) DO NOTHING`),
			b.Name, b.Language, b.Repository, b.SourceCode)
		if err != nil {
			return fmt.Errorf("seed benchmark %s: %w", b.Name, err)
		}
	}

	return tx.Commit()
}
