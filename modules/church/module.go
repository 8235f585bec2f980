package church

import (
	"github.com/gracewave/gracewave/modules/church/domain/identifier"
	"github.com/gracewave/gracewave/modules/church/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/church/presentation/controllers"
	"github.com/gracewave/gracewave/modules/church/services"
	corepersistence "github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/pkg/application"
	"github.com/gracewave/gracewave/pkg/configuration"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "church"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	churchRepo := persistence.NewChurchRepository()
	campusRepo := persistence.NewCampusRepository()
	memberRepo := persistence.NewMemberRepository()
	userRepo := corepersistence.NewUserRepository()

	generator := identifier.NewGenerator(
		conf.Church.IDPrefix,
		conf.Church.IDAttempts,
		churchRepo.Exists,
	)

	app.RegisterServices(
		services.NewChurchService(churchRepo, campusRepo, memberRepo, userRepo, generator, app.EventPublisher()),
		services.NewCampusService(campusRepo, app.EventPublisher()),
		services.NewMemberService(memberRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewChurchAPIController(app),
	)
	return nil
}
