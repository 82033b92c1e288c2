package modules

import (
	"github.com/orgsight/orgsight/modules/access"
	"github.com/orgsight/orgsight/modules/core"
	"github.com/orgsight/orgsight/modules/directory"
	"github.com/orgsight/orgsight/pkg/application"
)

// BuiltInModules lists modules in dependency order: access resolves scopes
// against the directory snapshot and the core session service.
var BuiltInModules = []application.Module{
	core.NewModule(),
	directory.NewModule(),
	access.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
