package constants

type ContextKey string

const (
	ParamsKey    ContextKey = "params"
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
	SessionKey   ContextKey = "session"
	PrincipalKey ContextKey = "principal"
)
