package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/domain"
)

func newHotspotFixture(now time.Time) (*HotspotService, *fakeIssueRepo, *fakeFeatureRepo, *fakeProjectRepo) {
	issues := newFakeIssueRepo()
	features := newFakeFeatureRepo()
	projects := newFakeProjectRepo()
	svc := NewHotspotService(testAnalyticsConfig(), zap.NewNop(), HotspotDependencies{
		IssueRepo:   issues,
		FeatureRepo: features,
		ProjectRepo: projects,
	})
	svc.now = func() time.Time { return now }
	return svc, issues, features, projects
}

func seedFeatureBugs(issues *fakeIssueRepo, featureID string, count, recurring, critical int, earliest time.Time) {
	for i := 0; i < count; i++ {
		severity := domain.SeverityMedium
		if i < critical {
			severity = domain.SeverityCritical
		}
		issues.add(domain.Issue{
			Title:       "bug",
			Severity:    severity,
			Status:      domain.IssueStatusOpen,
			ProjectID:   "project-1",
			FeatureID:   strPtr(featureID),
			IsRecurring: i < recurring,
			CreatedAt:   earliest.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestDetectHotspotsRiskFormula(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, _ := newHotspotFixture(now)
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	// 10 bugs over 5 days: density 2/day, half recurring, 3 critical
	seedFeatureBugs(issues, "feature-1", 10, 5, 3, now.Add(-5*24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)

	var feature *domain.Hotspot
	for i := range hotspots {
		if hotspots[i].ID == "feature-1" {
			feature = &hotspots[i]
		}
	}
	require.NotNil(t, feature)
	// min(100, 2*20 + 0.5*30 + 3*10)
	assert.InDelta(t, 85.0, feature.RiskScore, 1e-9)
	assert.Equal(t, 10, feature.BugCount)
	assert.InDelta(t, 2.0, feature.BugDensity, 1e-9)
	assert.InDelta(t, 0.5, feature.RecurringRate, 1e-9)
	assert.Equal(t, 3, feature.CriticalCount)
	assert.Equal(t, "Immediate refactor/triage recommended", feature.Recommendation)
}

func TestDetectHotspotsUsesConfiguredRiskWeights(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	issues := newFakeIssueRepo()
	features := newFakeFeatureRepo()
	projects := newFakeProjectRepo()
	cfg := testAnalyticsConfig()
	cfg.RiskDensityWeight = 5
	cfg.RiskRecurringWeight = 60
	cfg.RiskCriticalWeight = 4
	svc := NewHotspotService(cfg, zap.NewNop(), HotspotDependencies{
		IssueRepo:   issues,
		FeatureRepo: features,
		ProjectRepo: projects,
	})
	svc.now = func() time.Time { return now }
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	seedFeatureBugs(issues, "feature-1", 10, 5, 3, now.Add(-5*24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)

	var feature *domain.Hotspot
	for i := range hotspots {
		if hotspots[i].ID == "feature-1" {
			feature = &hotspots[i]
		}
	}
	require.NotNil(t, feature)
	// min(100, 2*5 + 0.5*60 + 3*4)
	assert.InDelta(t, 52.0, feature.RiskScore, 1e-9)
	assert.Equal(t, "Schedule focused review this sprint", feature.Recommendation)
}

func TestDetectHotspotsCapsRiskAtHundred(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, _ := newHotspotFixture(now)
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	seedFeatureBugs(issues, "feature-1", 20, 20, 20, now.Add(-24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, hotspots)
	assert.InDelta(t, 100.0, hotspots[0].RiskScore, 1e-9)
}

func TestDetectHotspotsExcludesBelowFloor(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, _ := newHotspotFixture(now)
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	// one old low-severity bug: density ~0.008, risk well below the floor
	issues.add(domain.Issue{
		Title:     "bug",
		Severity:  domain.SeverityLow,
		Status:    domain.IssueStatusOpen,
		ProjectID: "project-1",
		FeatureID: strPtr("feature-1"),
		CreatedAt: now.Add(-120 * 24 * time.Hour),
	})

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)
	for _, h := range hotspots {
		assert.NotEqual(t, "feature-1", h.ID)
	}
}

func TestDetectHotspotsIgnoresBugsOutsideWindow(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, _ := newHotspotFixture(now)
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})

	seedFeatureBugs(issues, "feature-1", 10, 10, 10, now.Add(-400*24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestDetectHotspotsSortsByRiskDescending(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, projects := newHotspotFixture(now)
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})
	features.add(domain.Feature{ID: "feature-2", Name: "Refunds", ProjectID: "project-1"})

	seedFeatureBugs(issues, "feature-1", 10, 5, 3, now.Add(-5*24*time.Hour))
	seedFeatureBugs(issues, "feature-2", 4, 0, 1, now.Add(-2*24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(hotspots), 2)
	for i := 1; i < len(hotspots); i++ {
		assert.GreaterOrEqual(t, hotspots[i-1].RiskScore, hotspots[i].RiskScore)
	}
}

func TestDetectHotspotsCoversFeaturesAndProjects(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	svc, issues, features, projects := newHotspotFixture(now)
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	features.add(domain.Feature{ID: "feature-1", Name: "Payments", ProjectID: "project-1"})
	seedFeatureBugs(issues, "feature-1", 10, 5, 3, now.Add(-5*24*time.Hour))

	hotspots, err := svc.DetectHotspots(context.Background())
	require.NoError(t, err)

	kinds := map[domain.HotspotEntityType]bool{}
	for _, h := range hotspots {
		kinds[h.Type] = true
	}
	assert.True(t, kinds[domain.HotspotFeature])
	assert.True(t, kinds[domain.HotspotProject])
}
