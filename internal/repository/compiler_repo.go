package repository

import (
	"context"

	"venchmarks/internal/models"
)

func (r *Repository) ListCompilers(ctx context.Context) ([]models.Compiler, error) {
	var compilers []models.Compiler
	err := r.db.SelectContext(ctx, &compilers, `
		SELECT id, name, languages, src_date, version, repository
		FROM compilers
		ORDER BY name`)
	return compilers, err
}
