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

func newTimeToFixFixture() (*TimeToFixService, *fakeIssueRepo, *fakeDeveloperRepo, *fakeProjectRepo) {
	issues := newFakeIssueRepo()
	devs := newFakeDeveloperRepo()
	projects := newFakeProjectRepo()
	svc := NewTimeToFixService(testAnalyticsConfig(), zap.NewNop(), TimeToFixDependencies{
		IssueRepo:     issues,
		DeveloperRepo: devs,
		ProjectRepo:   projects,
	})
	return svc, issues, devs, projects
}

func addResolvedIssue(issues *fakeIssueRepo, projectID, devID string, severity domain.IssueSeverity, hours float64, resolvedAt time.Time) {
	issues.add(domain.Issue{
		Severity:       severity,
		Status:         domain.IssueStatusResolved,
		ProjectID:      projectID,
		AssignedToID:   strPtr(devID),
		ResolutionTime: &hours,
		FixQuality:     intPtr(4),
		CreatedAt:      resolvedAt.Add(-time.Duration(hours) * time.Hour),
		ResolvedAt:     timePtr(resolvedAt),
	})
}

func TestTimeToFixMeansBySeverity(t *testing.T) {
	svc, issues, devs, projects := newTimeToFixFixture()
	devs.add(domain.Developer{ID: "dev-1", FullName: "Asha Rao", Role: domain.RoleDeveloper, Active: true})
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})

	now := time.Now().UTC()
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityCritical, 4, now)
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityCritical, 8, now)
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityLow, 48, now)

	report, err := svc.Report(context.Background(), TimeToFixFilters{})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, report.BySeverity[domain.SeverityCritical], 1e-9)
	assert.InDelta(t, 48.0, report.BySeverity[domain.SeverityLow], 1e-9)
	assert.Zero(t, report.BySeverity[domain.SeverityHigh])
	assert.Zero(t, report.BySeverity[domain.SeverityMedium])
	assert.InDelta(t, 20.0, report.OverallHours, 1e-9)
	assert.Equal(t, 3, report.MatchedCount)
}

func TestTimeToFixGroupsByDeveloperAndProject(t *testing.T) {
	svc, issues, devs, projects := newTimeToFixFixture()
	devs.add(domain.Developer{ID: "dev-1", FullName: "Asha Rao", Role: domain.RoleDeveloper, Active: true})
	devs.add(domain.Developer{ID: "dev-2", FullName: "Ben Ito", Role: domain.RoleDeveloper, Active: true})
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})
	projects.add(domain.Project{ID: "project-2", Name: "Search"})

	now := time.Now().UTC()
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityHigh, 10, now)
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityHigh, 20, now)
	addResolvedIssue(issues, "project-2", "dev-2", domain.SeverityHigh, 30, now)

	report, err := svc.Report(context.Background(), TimeToFixFilters{})
	require.NoError(t, err)

	require.Len(t, report.ByDeveloper, 2)
	assert.Equal(t, "dev-1", report.ByDeveloper[0].Key)
	assert.Equal(t, "Asha Rao", report.ByDeveloper[0].Label)
	assert.InDelta(t, 15.0, report.ByDeveloper[0].AvgHours, 1e-9)
	assert.Equal(t, 2, report.ByDeveloper[0].Count)
	assert.InDelta(t, 30.0, report.ByDeveloper[1].AvgHours, 1e-9)

	require.Len(t, report.ByProject, 2)
	assert.Equal(t, "Checkout", report.ByProject[0].Label)
	assert.InDelta(t, 15.0, report.ByProject[0].AvgHours, 1e-9)
}

func TestTimeToFixSkipsMissingResolutionTime(t *testing.T) {
	svc, issues, _, _ := newTimeToFixFixture()

	now := time.Now().UTC()
	issues.add(domain.Issue{
		Severity:   domain.SeverityHigh,
		Status:     domain.IssueStatusClosed,
		ProjectID:  "project-1",
		CreatedAt:  now.Add(-time.Hour),
		ResolvedAt: timePtr(now),
	})

	report, err := svc.Report(context.Background(), TimeToFixFilters{})
	require.NoError(t, err)
	assert.Zero(t, report.MatchedCount)
	assert.Zero(t, report.OverallHours)
}

func TestTimeToFixHonorsTimeframe(t *testing.T) {
	svc, issues, devs, projects := newTimeToFixFixture()
	devs.add(domain.Developer{ID: "dev-1", FullName: "Asha Rao", Role: domain.RoleDeveloper, Active: true})
	projects.add(domain.Project{ID: "project-1", Name: "Checkout"})

	now := time.Now().UTC()
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityHigh, 10, now)
	addResolvedIssue(issues, "project-1", "dev-1", domain.SeverityHigh, 99, now.Add(-40*24*time.Hour))

	report, err := svc.Report(context.Background(), TimeToFixFilters{
		Timeframe: &domain.Timeframe{Start: now.Add(-7 * 24 * time.Hour), End: now.Add(time.Hour)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedCount)
	assert.InDelta(t, 10.0, report.OverallHours, 1e-9)
}
