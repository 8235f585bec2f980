package core

import (
	"github.com/gracewave/gracewave/modules/core/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/core/presentation/controllers"
	"github.com/gracewave/gracewave/modules/core/services"
	"github.com/gracewave/gracewave/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	userRepo := persistence.NewUserRepository()
	sessionRepo := persistence.NewSessionRepository()

	app.RegisterServices(
		services.NewUserService(userRepo, app.EventPublisher()),
		services.NewAuthService(userRepo, sessionRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewUsersController(app),
	)
	return nil
}
