package directory

import (
	"github.com/orgsight/orgsight/modules/directory/infrastructure/persistence"
	"github.com/orgsight/orgsight/modules/directory/presentation/controllers"
	"github.com/orgsight/orgsight/modules/directory/services"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "directory"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	if err := conf.Directory.Validate(); err != nil {
		return err
	}

	svc := services.NewDirectoryService(services.DirectoryServiceOptions{
		Repo:            persistence.NewEmployeeRepository(app.Pool()),
		Bus:             app.EventPublisher(),
		Logger:          conf.Logger(),
		RefreshInterval: conf.Directory.RefreshInterval,
		RefreshTimeout:  conf.Directory.RefreshTimeout,
		MaxRetries:      conf.Directory.MaxRetries,
		RetryBackoff:    conf.Directory.RetryBackoff,
	})
	app.RegisterServices(svc)
	app.RegisterControllers(controllers.NewHealthController(app))
	return nil
}
