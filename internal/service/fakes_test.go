package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
)

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		RecurrenceLookbackDays:   90,
		SimilarityThreshold:      0.6,
		HotspotWindowDays:        180,
		ProductivityWindowWeeks:  12,
		TrendIncreaseRatio:       1.2,
		TrendDecreaseRatio:       0.8,
		SeverityCriticalWeight:   4,
		SeverityHighWeight:       3,
		SeverityMediumWeight:     2,
		SeverityLowWeight:        1,
		StabilityCriticalWeight:  15,
		StabilityHighWeight:      8,
		StabilityMediumWeight:    3,
		StabilityLowWeight:       1,
		StabilityRecurringWeight: 10,
		RiskDensityWeight:        20,
		RiskRecurringWeight:      30,
		RiskCriticalWeight:       10,
		RiskFloor:                30,
		RiskReviewThreshold:      50,
		RiskCriticalThreshold:    70,
		ScanWorkers:              2,
		CacheTTLSeconds:          60,
	}
}

func strPtr(s string) *string        { return &s }
func intPtr(i int) *int              { return &i }
func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }

// fakeIssueRepo mirrors the SQL filter semantics of the real repository so
// service tests exercise the same query surface.
type fakeIssueRepo struct {
	mu     sync.Mutex
	issues map[string]*domain.Issue
	nextID int
	err    error
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[string]*domain.Issue)}
}

func (r *fakeIssueRepo) add(issue domain.Issue) *domain.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue.ID == "" {
		r.nextID++
		issue.ID = fmt.Sprintf("issue-%d", r.nextID)
	}
	stored := issue
	r.issues[stored.ID] = &stored
	return &stored
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	issue.ID = fmt.Sprintf("issue-%d", r.nextID)
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	stored := *issue
	r.issues[issue.ID] = &stored
	return nil
}

func (r *fakeIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *issue
	r.issues[issue.ID] = &stored
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *issue
	return &copied, nil
}

func (r *fakeIssueRepo) ListWithFilter(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for _, issue := range r.issues {
		if matchesFilter(issue, filter) {
			out = append(out, *issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeIssueRepo) LinkRecurrence(_ context.Context, childID, rootID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	child, ok := r.issues[childID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if child.ParentIssueID != nil || child.RecurrenceCount > 0 {
		return false, nil
	}
	root, ok := r.issues[rootID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	child.ParentIssueID = &rootID
	child.IsRecurring = true
	root.RecurrenceCount++
	root.IsRecurring = true
	return true, nil
}

func matchesFilter(issue *domain.Issue, filter repository.IssueFilter) bool {
	if filter.ProjectID != nil && issue.ProjectID != *filter.ProjectID {
		return false
	}
	if filter.FeatureID != nil && (issue.FeatureID == nil || *issue.FeatureID != *filter.FeatureID) {
		return false
	}
	if filter.AssignedToID != nil && (issue.AssignedToID == nil || *issue.AssignedToID != *filter.AssignedToID) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, issue.Status) {
		return false
	}
	if len(filter.Severities) > 0 && !containsSeverity(filter.Severities, issue.Severity) {
		return false
	}
	if filter.IsRecurring != nil && issue.IsRecurring != *filter.IsRecurring {
		return false
	}
	if filter.CreatedFrom != nil && issue.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && issue.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if filter.ResolvedFrom != nil && (issue.ResolvedAt == nil || issue.ResolvedAt.Before(*filter.ResolvedFrom)) {
		return false
	}
	if filter.ResolvedTo != nil && (issue.ResolvedAt == nil || issue.ResolvedAt.After(*filter.ResolvedTo)) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.IssueStatus, status domain.IssueStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsSeverity(severities []domain.IssueSeverity, severity domain.IssueSeverity) bool {
	for _, s := range severities {
		if s == severity {
			return true
		}
	}
	return false
}

type fakeDeveloperRepo struct {
	mu         sync.Mutex
	developers map[string]*domain.Developer
	nextID     int
	err        error
}

func newFakeDeveloperRepo() *fakeDeveloperRepo {
	return &fakeDeveloperRepo{developers: make(map[string]*domain.Developer)}
}

func (r *fakeDeveloperRepo) add(dev domain.Developer) *domain.Developer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dev.ID == "" {
		r.nextID++
		dev.ID = fmt.Sprintf("dev-%d", r.nextID)
	}
	stored := dev
	r.developers[stored.ID] = &stored
	return &stored
}

func (r *fakeDeveloperRepo) Create(_ context.Context, dev *domain.Developer) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	dev.ID = fmt.Sprintf("dev-%d", r.nextID)
	stored := *dev
	r.developers[dev.ID] = &stored
	return nil
}

func (r *fakeDeveloperRepo) Update(_ context.Context, dev *domain.Developer) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.developers[dev.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *dev
	r.developers[dev.ID] = &stored
	return nil
}

func (r *fakeDeveloperRepo) GetByID(_ context.Context, id string) (*domain.Developer, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.developers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dev
	return &copied, nil
}

func (r *fakeDeveloperRepo) GetByEmail(_ context.Context, email string) (*domain.Developer, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dev := range r.developers {
		if dev.Email == email {
			copied := *dev
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDeveloperRepo) List(_ context.Context, filter repository.DeveloperFilter) ([]domain.Developer, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Developer
	for _, dev := range r.developers {
		if filter.Role != nil && dev.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && dev.Active != *filter.Active {
			continue
		}
		out = append(out, *dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeFeatureRepo struct {
	mu       sync.Mutex
	features map[string]*domain.Feature
	nextID   int
	err      error
}

func newFakeFeatureRepo() *fakeFeatureRepo {
	return &fakeFeatureRepo{features: make(map[string]*domain.Feature)}
}

func (r *fakeFeatureRepo) add(feature domain.Feature) *domain.Feature {
	r.mu.Lock()
	defer r.mu.Unlock()
	if feature.ID == "" {
		r.nextID++
		feature.ID = fmt.Sprintf("feature-%d", r.nextID)
	}
	stored := feature
	r.features[stored.ID] = &stored
	return &stored
}

func (r *fakeFeatureRepo) Create(_ context.Context, feature *domain.Feature) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	feature.ID = fmt.Sprintf("feature-%d", r.nextID)
	stored := *feature
	r.features[feature.ID] = &stored
	return nil
}

func (r *fakeFeatureRepo) GetByID(_ context.Context, id string) (*domain.Feature, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	feature, ok := r.features[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *feature
	return &copied, nil
}

func (r *fakeFeatureRepo) List(_ context.Context, filter repository.FeatureFilter) ([]domain.Feature, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Feature
	for _, feature := range r.features {
		if filter.ProjectID != nil && feature.ProjectID != *filter.ProjectID {
			continue
		}
		out = append(out, *feature)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	nextID   int
	err      error
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*domain.Project)}
}

func (r *fakeProjectRepo) add(project domain.Project) *domain.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == "" {
		r.nextID++
		project.ID = fmt.Sprintf("project-%d", r.nextID)
	}
	stored := project
	r.projects[stored.ID] = &stored
	return &stored
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	project.ID = fmt.Sprintf("project-%d", r.nextID)
	stored := *project
	r.projects[project.ID] = &stored
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *project
	return &copied, nil
}

func (r *fakeProjectRepo) List(_ context.Context) ([]domain.Project, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for _, project := range r.projects {
		out = append(out, *project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.IssueHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo { return &fakeHistoryRepo{} }

func (r *fakeHistoryRepo) Create(_ context.Context, history *domain.IssueHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *fakeHistoryRepo) ListByIssue(_ context.Context, issueID string) ([]domain.IssueHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.IssueHistory
	for _, entry := range r.entries {
		if entry.IssueID == issueID {
			out = append(out, entry)
		}
	}
	return out, nil
}
