package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/pkg/application"
	"github.com/orgsight/orgsight/pkg/configuration"
	"github.com/orgsight/orgsight/pkg/httpapi"
	"github.com/orgsight/orgsight/pkg/metrics"
	"github.com/orgsight/orgsight/pkg/middleware"
	"github.com/orgsight/orgsight/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.RequestParams(),
		middleware.Cors("http://localhost:3000"),
	}
	app.RegisterMiddleware(middlewares...)

	if options.Configuration.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(options.Configuration.Prometheus.Path))
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}
