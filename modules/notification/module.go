package notification

import (
	churchpersistence "github.com/gracewave/gracewave/modules/church/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/notification/infrastructure/persistence"
	"github.com/gracewave/gracewave/modules/notification/presentation/controllers"
	"github.com/gracewave/gracewave/modules/notification/services"
	pathwaypersistence "github.com/gracewave/gracewave/modules/pathway/infrastructure/persistence"
	"github.com/gracewave/gracewave/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "notification"
}

func (m *Module) Register(app application.Application) error {
	svc := services.NewNotificationService(
		persistence.NewNotificationRepository(),
		churchpersistence.NewMemberRepository(),
		pathwaypersistence.NewPathwayRepository(),
		app.DB(),
		app.Logger(),
		app.EventPublisher(),
	)
	app.RegisterServices(svc)

	app.EventPublisher().Subscribe(svc.OnUserCreated)
	app.EventPublisher().Subscribe(svc.OnMemberCreated)
	app.EventPublisher().Subscribe(svc.OnProgressCompleted)

	app.RegisterControllers(
		controllers.NewNotificationAPIController(app),
	)
	return nil
}
