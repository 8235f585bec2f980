package services_test

import (
	"context"
	"io"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreuser "github.com/gracewave/gracewave/modules/core/domain/aggregates/user"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/progress"
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/pathway/services"
	"github.com/gracewave/gracewave/pkg/authz"
	"github.com/gracewave/gracewave/pkg/eventbus"
	"github.com/gracewave/gracewave/pkg/itf"
)

// ---- fakes ----

type fakePathwayRepo struct {
	pathways map[uuid.UUID]*pathway.Pathway
	steps    map[uuid.UUID]*pathway.Step
}

func newFakePathwayRepo() *fakePathwayRepo {
	return &fakePathwayRepo{
		pathways: map[uuid.UUID]*pathway.Pathway{},
		steps:    map[uuid.UUID]*pathway.Step{},
	}
}

func (f *fakePathwayRepo) GetByID(ctx context.Context, id uuid.UUID) (*pathway.Pathway, error) {
	p, ok := f.pathways[id]
	if !ok {
		return nil, persistence.ErrPathwayNotFound
	}
	return p, nil
}

func (f *fakePathwayRepo) GetByChurchID(ctx context.Context, churchID string) ([]*pathway.Pathway, error) {
	var out []*pathway.Pathway
	for _, p := range f.pathways {
		if p.ChurchID == churchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePathwayRepo) Create(ctx context.Context, p *pathway.Pathway) (*pathway.Pathway, error) {
	f.pathways[p.ID] = p
	return p, nil
}

func (f *fakePathwayRepo) Update(ctx context.Context, p *pathway.Pathway) (*pathway.Pathway, error) {
	if _, ok := f.pathways[p.ID]; !ok {
		return nil, persistence.ErrPathwayNotFound
	}
	f.pathways[p.ID] = p
	return p, nil
}

func (f *fakePathwayRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.pathways, id)
	return nil
}

func (f *fakePathwayRepo) GetSteps(ctx context.Context, pathwayID uuid.UUID) ([]*pathway.Step, error) {
	var out []*pathway.Step
	for _, s := range f.steps {
		if s.PathwayID == pathwayID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakePathwayRepo) GetStepByID(ctx context.Context, id uuid.UUID) (*pathway.Step, error) {
	s, ok := f.steps[id]
	if !ok {
		return nil, persistence.ErrStepNotFound
	}
	return s, nil
}

func (f *fakePathwayRepo) CreateStep(ctx context.Context, s *pathway.Step) (*pathway.Step, error) {
	f.steps[s.ID] = s
	return s, nil
}

func (f *fakePathwayRepo) DeleteStep(ctx context.Context, id uuid.UUID) error {
	delete(f.steps, id)
	return nil
}

type fakeProgressRepo struct {
	records map[uuid.UUID]*progress.Progress
	steps   *fakePathwayRepo
}

func newFakeProgressRepo(steps *fakePathwayRepo) *fakeProgressRepo {
	return &fakeProgressRepo{
		records: map[uuid.UUID]*progress.Progress{},
		steps:   steps,
	}
}

func (f *fakeProgressRepo) GetByMemberID(ctx context.Context, memberID uuid.UUID) ([]*progress.Progress, error) {
	var out []*progress.Progress
	for _, p := range f.records {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) Exists(ctx context.Context, memberID, stepID uuid.UUID) (bool, error) {
	for _, p := range f.records {
		if p.MemberID == memberID && p.StepID == stepID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProgressRepo) Create(ctx context.Context, p *progress.Progress) (*progress.Progress, error) {
	f.records[p.ID] = p
	return p, nil
}

func (f *fakeProgressRepo) CountByStep(ctx context.Context, pathwayID uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, p := range f.records {
		step, ok := f.steps.steps[p.StepID]
		if !ok || step.PathwayID != pathwayID {
			continue
		}
		out[p.StepID]++
	}
	return out, nil
}

func (f *fakeProgressRepo) CountParticipants(ctx context.Context, pathwayID uuid.UUID) (int64, error) {
	seen := map[uuid.UUID]struct{}{}
	for _, p := range f.records {
		step, ok := f.steps.steps[p.StepID]
		if !ok || step.PathwayID != pathwayID {
			continue
		}
		seen[p.MemberID] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (f *fakeProgressRepo) DeleteByMemberID(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var removed int64
	for id, p := range f.records {
		if p.MemberID == memberID {
			delete(f.records, id)
			removed++
		}
	}
	return removed, nil
}

// ---- fixture ----

type fixture struct {
	pathways  *fakePathwayRepo
	progress  *fakeProgressRepo
	svc       *services.PathwayService
	analytics *services.AnalyticsService
	authzSvc  *authz.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pathways := newFakePathwayRepo()
	progressRepo := newFakeProgressRepo(pathways)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	publisher := eventbus.NewEventPublisher(logger)

	return &fixture{
		pathways:  pathways,
		progress:  progressRepo,
		svc:       services.NewPathwayService(pathways, progressRepo, publisher),
		analytics: services.NewAnalyticsService(pathways, progressRepo),
		authzSvc:  itf.BuildAuthz(t),
	}
}

func (f *fixture) staffCtx(t *testing.T) context.Context {
	t.Helper()
	u := coreuser.New("Sam", "Staff", "staff@example.com",
		coreuser.WithRole(coreuser.RoleStaff),
		coreuser.WithChurchID("GW-2024-AAAAAAAAA"),
	)
	return itf.NewTestContext().WithUser(u).WithAuthz(f.authzSvc).Build()
}

func (f *fixture) seedPathway(t *testing.T, stepNames ...string) (*pathway.Pathway, []*pathway.Step) {
	t.Helper()
	ctx := context.Background()
	p, err := f.pathways.Create(ctx, (&pathway.CreateDTO{
		ChurchID: "GW-2024-AAAAAAAAA",
		Name:     "Growth Track",
	}).ToEntity())
	require.NoError(t, err)

	steps := make([]*pathway.Step, 0, len(stepNames))
	for i, name := range stepNames {
		s, err := f.pathways.CreateStep(ctx, (&pathway.CreateStepDTO{
			PathwayID: p.ID,
			Name:      name,
			Order:     i + 1,
		}).ToEntity())
		require.NoError(t, err)
		steps = append(steps, s)
	}
	return p, steps
}

// ---- tests ----

func TestPathwayService_MarkComplete(t *testing.T) {
	t.Run("records a completion once", func(t *testing.T) {
		f := newFixture(t)
		_, steps := f.seedPathway(t, "Welcome", "Baptism")
		memberID := uuid.New()

		record, err := f.svc.MarkComplete(f.staffCtx(t), memberID, steps[0].ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, memberID, record.MemberID)
		assert.Equal(t, steps[0].ID, record.StepID)
		assert.False(t, record.CompletedAt.IsZero())
	})

	t.Run("is idempotent for a repeated completion", func(t *testing.T) {
		f := newFixture(t)
		_, steps := f.seedPathway(t, "Welcome")
		memberID := uuid.New()

		_, err := f.svc.MarkComplete(f.staffCtx(t), memberID, steps[0].ID)
		require.NoError(t, err)

		again, err := f.svc.MarkComplete(f.staffCtx(t), memberID, steps[0].ID)
		require.NoError(t, err)
		assert.Nil(t, again)
		assert.Len(t, f.progress.records, 1)
	})

	t.Run("rejects an unknown step", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.MarkComplete(f.staffCtx(t), uuid.New(), uuid.New())
		require.Error(t, err)

		var svcErr *services.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "PATHWAY_STEP_NOT_FOUND", svcErr.Code)
	})
}

func TestPathwayService_Steps(t *testing.T) {
	t.Run("returns steps ordered by position", func(t *testing.T) {
		f := newFixture(t)
		p, _ := f.seedPathway(t, "Welcome", "Baptism", "Serve Team")

		steps, err := f.svc.GetSteps(f.staffCtx(t), p.ID)
		require.NoError(t, err)
		require.Len(t, steps, 3)
		assert.Equal(t, "Welcome", steps[0].Name)
		assert.Equal(t, "Serve Team", steps[2].Name)
	})

	t.Run("removes a step", func(t *testing.T) {
		f := newFixture(t)
		p, steps := f.seedPathway(t, "Welcome", "Baptism")

		require.NoError(t, f.svc.RemoveStep(f.staffCtx(t), steps[0].ID))

		remaining, err := f.svc.GetSteps(f.staffCtx(t), p.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "Baptism", remaining[0].Name)
	})
}

func TestAnalyticsService_Report(t *testing.T) {
	t.Run("builds a funnel over ordered steps", func(t *testing.T) {
		f := newFixture(t)
		p, steps := f.seedPathway(t, "Welcome", "Baptism", "Serve Team")
		ctx := f.staffCtx(t)

		memberA := uuid.New()
		memberB := uuid.New()
		memberC := uuid.New()

		for _, m := range []uuid.UUID{memberA, memberB, memberC} {
			_, err := f.svc.MarkComplete(ctx, m, steps[0].ID)
			require.NoError(t, err)
		}
		for _, m := range []uuid.UUID{memberA, memberB} {
			_, err := f.svc.MarkComplete(ctx, m, steps[1].ID)
			require.NoError(t, err)
		}
		_, err := f.svc.MarkComplete(ctx, memberA, steps[2].ID)
		require.NoError(t, err)

		report, err := f.analytics.Report(ctx, p.ID)
		require.NoError(t, err)

		assert.Equal(t, p.ID, report.PathwayID)
		assert.Equal(t, int64(3), report.Participants)
		require.Len(t, report.Steps, 3)

		assert.Equal(t, int64(3), report.Steps[0].Started)
		assert.Equal(t, int64(3), report.Steps[0].Completed)
		assert.InDelta(t, 1.0, report.Steps[0].CompletionRate, 1e-9)

		assert.Equal(t, int64(3), report.Steps[1].Started)
		assert.Equal(t, int64(2), report.Steps[1].Completed)
		assert.InDelta(t, 2.0/3.0, report.Steps[1].CompletionRate, 1e-9)
		assert.InDelta(t, 1.0/3.0, report.Steps[1].DropOffRate, 1e-9)

		assert.Equal(t, int64(2), report.Steps[2].Started)
		assert.Equal(t, int64(1), report.Steps[2].Completed)
		assert.InDelta(t, 0.5, report.Steps[2].CompletionRate, 1e-9)
	})

	t.Run("handles a pathway with no progress", func(t *testing.T) {
		f := newFixture(t)
		p, _ := f.seedPathway(t, "Welcome")

		report, err := f.analytics.Report(f.staffCtx(t), p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), report.Participants)
		require.Len(t, report.Steps, 1)
		assert.Zero(t, report.Steps[0].CompletionRate)
		assert.Zero(t, report.Steps[0].DropOffRate)
	})

	t.Run("fails for an unknown pathway", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.analytics.Report(f.staffCtx(t), uuid.New())
		assert.ErrorIs(t, err, persistence.ErrPathwayNotFound)
	})
}
