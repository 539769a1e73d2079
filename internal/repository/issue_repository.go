package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/devtrack/internal/domain"
)

// IssueFilter captures issue query parameters.
type IssueFilter struct {
	ProjectID    *string
	FeatureID    *string
	AssignedToID *string
	Statuses     []domain.IssueStatus
	Severities   []domain.IssueSeverity
	IsRecurring  *bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	ResolvedFrom *time.Time
	ResolvedTo   *time.Time
	Limit        int
	Offset       int
}

// IssueRepository encapsulates issue persistence. LinkRecurrence is the only
// write the analytics engine performs; everything else is CRUD plumbing.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	// LinkRecurrence sets the child's parent pointer and increments the
	// root's recurrence count in one transaction. It reports false without
	// error when the child is already linked.
	LinkRecurrence(ctx context.Context, childID, rootID string) (bool, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, title, description, severity, status, project_id, feature_id, assigned_to_id,
               resolution_time_hours, fix_quality, is_recurring, recurrence_count, parent_issue_id,
               created_at, updated_at, resolved_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, severity, status, project_id, feature_id, assigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, is_recurring, recurrence_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Severity,
		issue.Status,
		issue.ProjectID,
		issue.FeatureID,
		issue.AssignedToID,
	).Scan(&issue.ID, &issue.IsRecurring, &issue.RecurrenceCount, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET title=$1, description=$2, severity=$3, status=$4, feature_id=$5, assigned_to_id=$6,
            resolution_time_hours=$7, fix_quality=$8, resolved_at=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Title,
		issue.Description,
		issue.Severity,
		issue.Status,
		issue.FeatureID,
		issue.AssignedToID,
		issue.ResolutionTime,
		issue.FixQuality,
		issue.ResolvedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id=$1`, issueColumns)
	row := r.pool.QueryRow(ctx, query, id)
	var issue domain.Issue
	if err := scanIssueRow(row, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	base := fmt.Sprintf(`SELECT %s FROM issues`, issueColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.FeatureID != nil {
		args = append(args, *filter.FeatureID)
		clauses = append(clauses, fmt.Sprintf("feature_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, severity := range filter.Severities {
			args = append(args, severity)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.IsRecurring != nil {
		args = append(args, *filter.IsRecurring)
		clauses = append(clauses, fmt.Sprintf("is_recurring=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.ResolvedFrom != nil {
		args = append(args, *filter.ResolvedFrom)
		clauses = append(clauses, fmt.Sprintf("resolved_at >= $%d", len(args)))
	}
	if filter.ResolvedTo != nil {
		args = append(args, *filter.ResolvedTo)
		clauses = append(clauses, fmt.Sprintf("resolved_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
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
	return scanIssues(rows)
}

func (r *issueRepository) LinkRecurrence(ctx context.Context, childID, rootID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// The guard makes a concurrent duplicate link attempt a no-op and keeps
	// chain roots (recurrence_count > 0) from being relinked under another
	// issue: zero rows here rolls back without touching the root.
	const linkChild = `
        UPDATE issues SET parent_issue_id=$1, is_recurring=TRUE, updated_at=NOW()
        WHERE id=$2 AND parent_issue_id IS NULL AND recurrence_count = 0`
	cmd, err := tx.Exec(ctx, linkChild, rootID, childID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	const bumpRoot = `
        UPDATE issues SET recurrence_count=recurrence_count+1, is_recurring=TRUE, updated_at=NOW()
        WHERE id=$1`
	cmd, err = tx.Exec(ctx, bumpRoot, rootID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssueRow(row rowScanner, issue *domain.Issue) error {
	return row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Severity,
		&issue.Status,
		&issue.ProjectID,
		&issue.FeatureID,
		&issue.AssignedToID,
		&issue.ResolutionTime,
		&issue.FixQuality,
		&issue.IsRecurring,
		&issue.RecurrenceCount,
		&issue.ParentIssueID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
	)
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := scanIssueRow(rows, &issue); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
