package pathway

import (
	"github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/pathway/presentation/controllers"
	"github.com/gracewave/gracewave/modules/pathway/services"
	"github.com/gracewave/gracewave/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "pathway"
}

func (m *Module) Register(app application.Application) error {
	pathwayRepo := persistence.NewPathwayRepository()
	progressRepo := persistence.NewProgressRepository()

	app.RegisterServices(
		services.NewPathwayService(pathwayRepo, progressRepo, app.EventPublisher()),
		services.NewAnalyticsService(pathwayRepo, progressRepo),
	)
	app.RegisterControllers(
		controllers.NewPathwayAPIController(app),
	)
	return nil
}
