package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

// TimeToFixService computes mean resolution durations grouped by severity,
// developer and project.
type TimeToFixService struct {
	issues     repository.IssueRepository
	developers repository.DeveloperRepository
	projects   repository.ProjectRepository
	cfg        config.AnalyticsConfig
	log        *zap.Logger
}

// TimeToFixDependencies bundles requirements for the service.
type TimeToFixDependencies struct {
	IssueRepo     repository.IssueRepository
	DeveloperRepo repository.DeveloperRepository
	ProjectRepo   repository.ProjectRepository
}

// NewTimeToFixService constructs the service.
func NewTimeToFixService(cfg config.AnalyticsConfig, log *zap.Logger, deps TimeToFixDependencies) *TimeToFixService {
	return &TimeToFixService{
		issues:     deps.IssueRepo,
		developers: deps.DeveloperRepo,
		projects:   deps.ProjectRepo,
		cfg:        cfg,
		log:        log,
	}
}

// TimeToFixFilters narrows the aggregation to a project or timeframe.
type TimeToFixFilters struct {
	ProjectID *string
	Timeframe *domain.Timeframe
}

type durationBucket struct {
	total float64
	count int
}

func (b durationBucket) mean() float64 {
	if b.count == 0 {
		return 0
	}
	return b.total / float64(b.count)
}

// Report aggregates resolution durations for resolved issues matching the
// filters. Issues without a recorded resolution time are ignored.
func (s *TimeToFixService) Report(ctx context.Context, filters TimeToFixFilters) (*domain.TimeToFixReport, error) {
	issueFilter := repository.IssueFilter{
		Statuses:  []domain.IssueStatus{domain.IssueStatusResolved, domain.IssueStatusClosed},
		ProjectID: filters.ProjectID,
	}
	if filters.Timeframe != nil {
		if filters.Timeframe.End.Before(filters.Timeframe.Start) {
			return nil, apperrors.NewValidationError("timeframe end precedes start", map[string]any{
				"start": filters.Timeframe.Start,
				"end":   filters.Timeframe.End,
			})
		}
		issueFilter.ResolvedFrom = &filters.Timeframe.Start
		issueFilter.ResolvedTo = &filters.Timeframe.End
	}

	issues, err := s.issues.ListWithFilter(ctx, issueFilter)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	var (
		overall     durationBucket
		bySeverity  = make(map[domain.IssueSeverity]durationBucket)
		byDeveloper = make(map[string]durationBucket)
		byProject   = make(map[string]durationBucket)
	)
	for i := range issues {
		issue := &issues[i]
		if issue.ResolutionTime == nil {
			continue
		}
		hours := *issue.ResolutionTime

		overall.total += hours
		overall.count++

		sev := bySeverity[issue.Severity]
		sev.total += hours
		sev.count++
		bySeverity[issue.Severity] = sev

		if issue.AssignedToID != nil {
			dev := byDeveloper[*issue.AssignedToID]
			dev.total += hours
			dev.count++
			byDeveloper[*issue.AssignedToID] = dev
		}

		proj := byProject[issue.ProjectID]
		proj.total += hours
		proj.count++
		byProject[issue.ProjectID] = proj
	}

	report := &domain.TimeToFixReport{
		BySeverity:   make(map[domain.IssueSeverity]float64, 4),
		OverallHours: overall.mean(),
		MatchedCount: overall.count,
	}
	for _, sev := range []domain.IssueSeverity{domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow} {
		report.BySeverity[sev] = bySeverity[sev].mean()
	}
	report.ByDeveloper = s.developerGroups(ctx, byDeveloper)
	report.ByProject = s.projectGroups(ctx, byProject)
	return report, nil
}

func (s *TimeToFixService) developerGroups(ctx context.Context, buckets map[string]durationBucket) []domain.TimeToFixGroup {
	names := make(map[string]string)
	if devs, err := s.developers.List(ctx, repository.DeveloperFilter{}); err != nil {
		s.log.Warn("developer names unavailable for time-to-fix report", zap.Error(err))
	} else {
		for i := range devs {
			names[devs[i].ID] = devs[i].FullName
		}
	}
	return sortedGroups(buckets, names)
}

func (s *TimeToFixService) projectGroups(ctx context.Context, buckets map[string]durationBucket) []domain.TimeToFixGroup {
	names := make(map[string]string)
	if projects, err := s.projects.List(ctx); err != nil {
		s.log.Warn("project names unavailable for time-to-fix report", zap.Error(err))
	} else {
		for i := range projects {
			names[projects[i].ID] = projects[i].Name
		}
	}
	return sortedGroups(buckets, names)
}

func sortedGroups(buckets map[string]durationBucket, names map[string]string) []domain.TimeToFixGroup {
	groups := make([]domain.TimeToFixGroup, 0, len(buckets))
	for key, bucket := range buckets {
		groups = append(groups, domain.TimeToFixGroup{
			Key:      key,
			Label:    names[key],
			AvgHours: bucket.mean(),
			Count:    bucket.count,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
