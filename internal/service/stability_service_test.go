package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/domain"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

func newStabilityFixture() (*StabilityService, *fakeIssueRepo, *fakeFeatureRepo, *fakeProjectRepo) {
	issues := newFakeIssueRepo()
	features := newFakeFeatureRepo()
	projects := newFakeProjectRepo()
	svc := NewStabilityService(testAnalyticsConfig(), zap.NewNop(), StabilityDependencies{
		IssueRepo:   issues,
		FeatureRepo: features,
		ProjectRepo: projects,
	})
	return svc, issues, features, projects
}

func addBug(issues *fakeIssueRepo, featureID string, severity domain.IssueSeverity, recurring bool) {
	issues.add(domain.Issue{
		Title:       "bug",
		Severity:    severity,
		Status:      domain.IssueStatusOpen,
		ProjectID:   "project-1",
		FeatureID:   strPtr(featureID),
		IsRecurring: recurring,
		CreatedAt:   time.Now().UTC(),
	})
}

func TestFeatureStabilityPenalizesSeverityMix(t *testing.T) {
	svc, issues, features, projects := newStabilityFixture()
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	// 2 critical + 1 high, one of them recurring
	addBug(issues, "feature-1", domain.SeverityCritical, true)
	addBug(issues, "feature-1", domain.SeverityCritical, false)
	addBug(issues, "feature-1", domain.SeverityHigh, false)

	results, err := svc.FeatureStability(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	// 100 - (2*15 + 1*8) - 1*10
	assert.InDelta(t, 52.0, got.StabilityScore, 1e-9)
	assert.Equal(t, 3, got.TotalBugs)
	assert.Equal(t, 2, got.CriticalBugs)
	assert.Equal(t, 1, got.HighBugs)
	assert.Equal(t, 1, got.RecurringBugs)
	assert.Equal(t, "Payments", got.FeatureName)
	assert.Equal(t, "Checkout", got.ProjectName)
}

func TestFeatureStabilityPerfectWithoutBugs(t *testing.T) {
	svc, _, features, projects := newStabilityFixture()
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	results, err := svc.FeatureStability(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 100.0, results[0].StabilityScore, 1e-9)
}

func TestFeatureStabilityClampsAtZero(t *testing.T) {
	svc, issues, features, projects := newStabilityFixture()
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	for i := 0; i < 10; i++ {
		addBug(issues, "feature-1", domain.SeverityCritical, true)
	}

	results, err := svc.FeatureStability(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.0, results[0].StabilityScore, 1e-9)
}

func TestFeatureStabilityScopedToProject(t *testing.T) {
	svc, issues, features, projects := newStabilityFixture()
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	projects.add(domain.Project{ID: "project-2", Name: "Search"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})
	features.add(domain.Feature{ID: "feature-2", Name: "Ranking", ProjectID: "project-2"})
	addBug(issues, "feature-2", domain.SeverityLow, false)

	results, err := svc.FeatureStability(context.Background(), strPtr("project-2"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "feature-2", results[0].FeatureID)
	assert.InDelta(t, 99.0, results[0].StabilityScore, 1e-9)
}

func TestFeatureStabilityUnknownProject(t *testing.T) {
	svc, _, _, _ := newStabilityFixture()

	_, err := svc.FeatureStability(context.Background(), strPtr("ghost"))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
