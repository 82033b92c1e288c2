package access

import (
	"github.com/orgsight/orgsight/modules/access/presentation/controllers"
	"github.com/orgsight/orgsight/modules/access/services"
	directoryservices "github.com/orgsight/orgsight/modules/directory/services"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "access"
}

// Register wires the scope pipeline. Depends on the directory and core
// modules being registered first.
func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	directory := app.Service(directoryservices.DirectoryService{}).(*directoryservices.DirectoryService)

	overrides := services.NewOverrideService(app.EventPublisher(), conf.Logger())
	scopes := services.NewScopeService(directory, overrides, app.EventPublisher(), conf.Logger())
	app.RegisterServices(overrides, scopes)
	app.RegisterControllers(controllers.NewAccessAPIController(app))
	return nil
}
