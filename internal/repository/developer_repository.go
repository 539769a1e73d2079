package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/devtrack/internal/domain"
)

// DeveloperFilter defines query params for developer listing.
type DeveloperFilter struct {
	Role   *domain.DeveloperRole
	Active *bool
	Limit  int
	Offset int
}

// DeveloperRepository handles persistence for developers. Skills are stored
// as a JSON blob; decoding to the typed set happens here, never in services.
type DeveloperRepository interface {
	Create(ctx context.Context, dev *domain.Developer) error
	Update(ctx context.Context, dev *domain.Developer) error
	GetByID(ctx context.Context, id string) (*domain.Developer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Developer, error)
	List(ctx context.Context, filter DeveloperFilter) ([]domain.Developer, error)
}

type developerRepository struct {
	pool *pgxpool.Pool
}

// NewDeveloperRepository instantiates the repository.
func NewDeveloperRepository(pool *pgxpool.Pool) DeveloperRepository {
	return &developerRepository{pool: pool}
}

func (r *developerRepository) Create(ctx context.Context, dev *domain.Developer) error {
	skills, err := encodeSkills(dev.Skills)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO developers (full_name, email, password_hash, skills, seniority_level, role, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dev.FullName,
		dev.Email,
		dev.PasswordHash,
		skills,
		dev.Seniority,
		dev.Role,
		dev.Active,
	).Scan(&dev.ID, &dev.CreatedAt, &dev.UpdatedAt)
}

func (r *developerRepository) Update(ctx context.Context, dev *domain.Developer) error {
	skills, err := encodeSkills(dev.Skills)
	if err != nil {
		return err
	}
	const query = `
        UPDATE developers
        SET full_name=$1, email=$2, password_hash=$3, skills=$4, seniority_level=$5, role=$6, active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		dev.FullName,
		dev.Email,
		dev.PasswordHash,
		skills,
		dev.Seniority,
		dev.Role,
		dev.Active,
		dev.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const developerColumns = `id, full_name, email, password_hash, skills, seniority_level, role, active_flag, created_at, updated_at`

func (r *developerRepository) GetByID(ctx context.Context, id string) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE id=$1`, developerColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *developerRepository) GetByEmail(ctx context.Context, email string) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE email=$1`, developerColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *developerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Developer, error) {
	var dev domain.Developer
	if err := scanDeveloperRow(r.pool.QueryRow(ctx, query, arg), &dev); err != nil {
		return nil, err
	}
	return &dev, nil
}

func (r *developerRepository) List(ctx context.Context, filter DeveloperFilter) ([]domain.Developer, error) {
	base := fmt.Sprintf(`SELECT %s FROM developers`, developerColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY full_name ASC`, base, strings.Join(clauses, " AND "))
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

	var result []domain.Developer
	for rows.Next() {
		var dev domain.Developer
		if err := scanDeveloperRow(rows, &dev); err != nil {
			return nil, err
		}
		result = append(result, dev)
	}
	return result, rows.Err()
}

func scanDeveloperRow(row rowScanner, dev *domain.Developer) error {
	var skillsJSON []byte
	if err := row.Scan(
		&dev.ID,
		&dev.FullName,
		&dev.Email,
		&dev.PasswordHash,
		&skillsJSON,
		&dev.Seniority,
		&dev.Role,
		&dev.Active,
		&dev.CreatedAt,
		&dev.UpdatedAt,
	); err != nil {
		return err
	}
	return decodeSkills(skillsJSON, dev)
}

func encodeSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(skills)
}

func decodeSkills(raw []byte, dev *domain.Developer) error {
	if len(raw) == 0 {
		dev.Skills = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, &dev.Skills); err != nil {
		return fmt.Errorf("decode skills for developer %s: %w", dev.ID, err)
	}
	return nil
}
