package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/gracewave/gracewave/modules/pathway/domain/entities/pathway"
	"github.com/gracewave/gracewave/modules/pathway/domain/entities/progress"
	"github.com/gracewave/gracewave/modules/pathway/permissions"
	"github.com/gracewave/gracewave/pkg/composables"
)

// StepStats is one funnel row of a pathway report.
type StepStats struct {
	StepID         uuid.UUID
	StepName       string
	Order          int
	Started        int64
	Completed      int64
	CompletionRate float64
	DropOffRate    float64
}

// PathwayReport is the completion funnel of a single pathway. Steps are
// ordered; each step's Started equals the previous step's Completed, and the
// first step starts with every participant of the pathway.
type PathwayReport struct {
	PathwayID    uuid.UUID
	PathwayName  string
	Participants int64
	Steps        []StepStats
}

type AnalyticsService struct {
	pathways pathway.Repository
	progress progress.Repository
}

func NewAnalyticsService(pathways pathway.Repository, progressRepo progress.Repository) *AnalyticsService {
	return &AnalyticsService{
		pathways: pathways,
		progress: progressRepo,
	}
}

// Report aggregates per-step completion and drop-off for a pathway.
func (s *AnalyticsService) Report(ctx context.Context, pathwayID uuid.UUID) (*PathwayReport, error) {
	if err := composables.CanUser(ctx, permissions.ObjectPathways, permissions.ActionView); err != nil {
		return nil, err
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*PathwayReport, error) {
		p, err := s.pathways.GetByID(txCtx, pathwayID)
		if err != nil {
			return nil, err
		}
		steps, err := s.pathways.GetSteps(txCtx, pathwayID)
		if err != nil {
			return nil, err
		}
		completions, err := s.progress.CountByStep(txCtx, pathwayID)
		if err != nil {
			return nil, err
		}
		participants, err := s.progress.CountParticipants(txCtx, pathwayID)
		if err != nil {
			return nil, err
		}

		report := &PathwayReport{
			PathwayID:    p.ID,
			PathwayName:  p.Name,
			Participants: participants,
			Steps:        make([]StepStats, 0, len(steps)),
		}
		started := participants
		for _, step := range steps {
			completed := completions[step.ID]
			stats := StepStats{
				StepID:    step.ID,
				StepName:  step.Name,
				Order:     step.Order,
				Started:   started,
				Completed: completed,
			}
			if started > 0 {
				stats.CompletionRate = float64(completed) / float64(started)
				stats.DropOffRate = 1 - stats.CompletionRate
			}
			report.Steps = append(report.Steps, stats)
			started = completed
		}
		return report, nil
	})
}
