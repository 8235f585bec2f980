package modules

import (
	"github.com/gracewave/gracewave/modules/church"
	"github.com/gracewave/gracewave/modules/core"
	"github.com/gracewave/gracewave/modules/notification"
	"github.com/gracewave/gracewave/modules/pathway"
	"github.com/gracewave/gracewave/pkg/application"
)

// BuiltInModules lists every module in registration order. Core goes first
// so its services are available to the rest.
var BuiltInModules = []application.Module{
	core.NewModule(),
	church.NewModule(),
	pathway.NewModule(),
	notification.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range BuiltInModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
