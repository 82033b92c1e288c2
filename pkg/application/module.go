package application

// Module is a self-contained feature set that wires its services and
// controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}
