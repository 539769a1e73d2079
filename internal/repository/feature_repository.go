package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/devtrack/internal/domain"
)

// FeatureFilter restricts feature listing.
type FeatureFilter struct {
	ProjectID *string
	Limit     int
	Offset    int
}

// FeatureRepository handles persistence for features.
type FeatureRepository interface {
	Create(ctx context.Context, feature *domain.Feature) error
	GetByID(ctx context.Context, id string) (*domain.Feature, error)
	List(ctx context.Context, filter FeatureFilter) ([]domain.Feature, error)
}

type featureRepository struct {
	pool *pgxpool.Pool
}

// NewFeatureRepository instantiates the repository.
func NewFeatureRepository(pool *pgxpool.Pool) FeatureRepository {
	return &featureRepository{pool: pool}
}

func (r *featureRepository) Create(ctx context.Context, feature *domain.Feature) error {
	const query = `
        INSERT INTO features (name, project_id)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, feature.Name, feature.ProjectID).
		Scan(&feature.ID, &feature.CreatedAt, &feature.UpdatedAt)
}

func (r *featureRepository) GetByID(ctx context.Context, id string) (*domain.Feature, error) {
	const query = `
        SELECT id, name, project_id, created_at, updated_at
        FROM features WHERE id=$1`
	var feature domain.Feature
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&feature.ID,
		&feature.Name,
		&feature.ProjectID,
		&feature.CreatedAt,
		&feature.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *featureRepository) List(ctx context.Context, filter FeatureFilter) ([]domain.Feature, error) {
	base := `SELECT id, name, project_id, created_at, updated_at FROM features`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY name ASC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeatures(rows)
}

func scanFeatures(rows pgx.Rows) ([]domain.Feature, error) {
	var result []domain.Feature
	for rows.Next() {
		var feature domain.Feature
		if err := rows.Scan(
			&feature.ID,
			&feature.Name,
			&feature.ProjectID,
			&feature.CreatedAt,
			&feature.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feature)
	}
	return result, rows.Err()
}
