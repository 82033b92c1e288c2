package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgsight/orgsight/pkg/eventbus"
)

// Controller is a self-registering HTTP surface.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Application is the composition root: services keyed by type, controllers
// keyed by path, and the shared infrastructure they hang off.
type Application interface {
	Pool() *pgxpool.Pool
	EventPublisher() eventbus.EventBus

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller

	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Middleware() []mux.MiddlewareFunc

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:           opts.Pool,
		eventPublisher: opts.EventBus,
		controllers:    make(map[string]Controller),
		services:       make(map[reflect.Type]interface{}),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool           *pgxpool.Pool
	eventPublisher eventbus.EventBus
	services       map[reflect.Type]interface{}
	controllers    map[string]Controller
	middleware     []mux.MiddlewareFunc
	controllerKeys []string
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventPublisher
}

func (a *application) RegisterControllers(controllers ...Controller) {
	for _, controller := range controllers {
		key := controller.Key()
		if _, ok := a.controllers[key]; !ok {
			a.controllerKeys = append(a.controllerKeys, key)
		}
		a.controllers[key] = controller
	}
}

// Controllers returns registered controllers in registration order.
func (a *application) Controllers() []Controller {
	out := make([]Controller, 0, len(a.controllerKeys))
	for _, key := range a.controllerKeys {
		out = append(out, a.controllers[key])
	}
	return out
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		a.services[serviceType] = service
	}
}

// Service looks a service up by example value, e.g.
// app.Service(services.SessionService{}).(*services.SessionService).
func (a *application) Service(service interface{}) interface{} {
	svc, ok := a.services[reflect.TypeOf(service)]
	if !ok {
		panic(fmt.Sprintf("service %s not found", reflect.TypeOf(service).Name()))
	}
	return svc
}
