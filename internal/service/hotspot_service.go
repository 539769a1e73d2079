package service

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/devtrack/internal/analytics"
	"github.com/spec-kit/devtrack/internal/cache"
	"github.com/spec-kit/devtrack/internal/config"
	"github.com/spec-kit/devtrack/internal/domain"
	"github.com/spec-kit/devtrack/internal/observability"
	"github.com/spec-kit/devtrack/internal/repository"
	apperrors "github.com/spec-kit/devtrack/pkg/errorutil"
)

const hotspotCacheKey = "analytics:hotspots"

// HotspotService scans features and projects for concentrations of bug
// activity and ranks them by risk.
type HotspotService struct {
	issues   repository.IssueRepository
	features repository.FeatureRepository
	projects repository.ProjectRepository
	cache    *cache.AnalyticsCache
	metrics  *observability.Metrics
	cfg      config.AnalyticsConfig
	log      *zap.Logger
	now      func() time.Time
}

// HotspotDependencies bundles requirements for the service.
type HotspotDependencies struct {
	IssueRepo   repository.IssueRepository
	FeatureRepo repository.FeatureRepository
	ProjectRepo repository.ProjectRepository
	Cache       *cache.AnalyticsCache
	Metrics     *observability.Metrics
}

// NewHotspotService constructs the service.
func NewHotspotService(cfg config.AnalyticsConfig, log *zap.Logger, deps HotspotDependencies) *HotspotService {
	return &HotspotService{
		issues:   deps.IssueRepo,
		features: deps.FeatureRepo,
		projects: deps.ProjectRepo,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type scanEntity struct {
	id         string
	name       string
	entityType domain.HotspotEntityType
}

// DetectHotspots scans every feature and project over the trailing analysis
// window. Entities whose bugs cannot be fetched are logged and skipped;
// results come back ordered by risk, highest first.
func (s *HotspotService) DetectHotspots(ctx context.Context) ([]domain.Hotspot, error) {
	var cached []domain.Hotspot
	if s.cache.Get(ctx, hotspotCacheKey, &cached) {
		return cached, nil
	}

	started := s.now()
	entities, err := s.collectEntities(ctx)
	if err != nil {
		return nil, err
	}

	window := domain.Timeframe{Start: started.Add(-s.cfg.HotspotWindow()), End: started}
	hotspots := s.scan(ctx, entities, window)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].RiskScore != hotspots[j].RiskScore {
			return hotspots[i].RiskScore > hotspots[j].RiskScore
		}
		if hotspots[i].BugCount != hotspots[j].BugCount {
			return hotspots[i].BugCount > hotspots[j].BugCount
		}
		return hotspots[i].ID < hotspots[j].ID
	})

	if s.metrics != nil {
		s.metrics.RecordScan("hotspots", s.now().Sub(started))
	}
	s.cache.Set(ctx, hotspotCacheKey, hotspots)
	return hotspots, nil
}

// scan fans entity aggregation out over a bounded worker pool.
func (s *HotspotService) scan(ctx context.Context, entities []scanEntity, window domain.Timeframe) []domain.Hotspot {
	workers := s.cfg.ScanWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan scanEntity)
	results := make(chan domain.Hotspot, len(entities))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entity := range jobs {
				hotspot, err := s.aggregateEntity(ctx, entity, window)
				if err != nil {
					s.log.Warn("skipping entity in hotspot scan",
						zap.String("entity_id", entity.id),
						zap.String("entity_type", string(entity.entityType)),
						zap.Error(err),
					)
					continue
				}
				if hotspot != nil {
					results <- *hotspot
				}
			}
		}()
	}

	for _, entity := range entities {
		if ctx.Err() != nil {
			break
		}
		jobs <- entity
	}
	close(jobs)
	wg.Wait()
	close(results)

	hotspots := make([]domain.Hotspot, 0, len(entities))
	for hotspot := range results {
		hotspots = append(hotspots, hotspot)
	}
	return hotspots
}

// aggregateEntity computes the risk profile for one entity. Entities below
// the reporting floor come back nil.
func (s *HotspotService) aggregateEntity(ctx context.Context, entity scanEntity, window domain.Timeframe) (*domain.Hotspot, error) {
	filter := repository.IssueFilter{CreatedFrom: &window.Start, CreatedTo: &window.End}
	switch entity.entityType {
	case domain.HotspotFeature:
		filter.FeatureID = &entity.id
	case domain.HotspotProject:
		filter.ProjectID = &entity.id
	}

	issues, err := s.issues.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, nil
	}

	var (
		recurring int
		criticals int
		earliest  = issues[0].CreatedAt
		createdAt = make([]time.Time, 0, len(issues))
	)
	for i := range issues {
		issue := &issues[i]
		createdAt = append(createdAt, issue.CreatedAt)
		if issue.CreatedAt.Before(earliest) {
			earliest = issue.CreatedAt
		}
		if issue.IsRecurring {
			recurring++
		}
		if issue.Severity == domain.SeverityCritical {
			criticals++
		}
	}

	ageDays := math.Max(window.End.Sub(earliest).Hours()/24, 1)
	density := float64(len(issues)) / ageDays
	recurringRate := float64(recurring) / float64(len(issues))
	risk := math.Min(100, density*s.cfg.RiskDensityWeight+recurringRate*s.cfg.RiskRecurringWeight+float64(criticals)*s.cfg.RiskCriticalWeight)
	if risk < s.cfg.RiskFloor {
		return nil, nil
	}

	return &domain.Hotspot{
		ID:             entity.id,
		Name:           entity.name,
		Type:           entity.entityType,
		BugCount:       len(issues),
		BugDensity:     density,
		RecurringRate:  recurringRate,
		CriticalCount:  criticals,
		RiskScore:      risk,
		Trend:          analytics.ClassifyTrend(analytics.WeeklyCounts(createdAt, window.Start, window.End), s.cfg.TrendIncreaseRatio, s.cfg.TrendDecreaseRatio),
		Recommendation: s.recommend(risk),
	}, nil
}

func (s *HotspotService) recommend(risk float64) string {
	switch {
	case risk >= s.cfg.RiskCriticalThreshold:
		return "Immediate refactor/triage recommended"
	case risk >= s.cfg.RiskReviewThreshold:
		return "Schedule focused review this sprint"
	default:
		return "Monitor; add regression tests"
	}
}

func (s *HotspotService) collectEntities(ctx context.Context) ([]scanEntity, error) {
	features, err := s.features.List(ctx, repository.FeatureFilter{})
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.NewRepositoryFailure(err)
	}

	entities := make([]scanEntity, 0, len(features)+len(projects))
	for i := range features {
		entities = append(entities, scanEntity{id: features[i].ID, name: features[i].Name, entityType: domain.HotspotFeature})
	}
	for i := range projects {
		entities = append(entities, scanEntity{id: projects[i].ID, name: projects[i].Name, entityType: domain.HotspotProject})
	}
	return entities, nil
}
