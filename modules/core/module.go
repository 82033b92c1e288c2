package core

import (
	"github.com/orgsight/orgsight/modules/core/infrastructure/identity"
	"github.com/orgsight/orgsight/modules/core/services"
	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	if err := conf.Identity.Validate(); err != nil {
		return err
	}

	sessions := services.NewSessionService(services.SessionServiceOptions{
		Provider:         identity.NewOAuthProvider(conf.Identity),
		Bus:              app.EventPublisher(),
		Logger:           conf.Logger(),
		RefreshThreshold: conf.Identity.RefreshThreshold,
		MaxRetries:       conf.Identity.RefreshMaxRetries,
		RetryBackoff:     conf.Identity.RefreshBackoff,
		IdleTimeout:      conf.Identity.IdleTimeout,
	})
	app.RegisterServices(sessions)
	return nil
}
