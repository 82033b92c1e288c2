package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}
	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"orgsight"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// IdentityOptions configures the external identity provider used by the
// session manager. Only the token endpoint contract is consumed here.
type IdentityOptions struct {
	TokenURL          string        `env:"IDENTITY_TOKEN_URL"`
	ClientID          string        `env:"IDENTITY_CLIENT_ID"`
	ClientSecret      string        `env:"IDENTITY_CLIENT_SECRET"`
	RefreshThreshold  time.Duration `env:"IDENTITY_REFRESH_THRESHOLD" envDefault:"5m"`
	RefreshMaxRetries int           `env:"IDENTITY_REFRESH_MAX_RETRIES" envDefault:"3"`
	RefreshBackoff    time.Duration `env:"IDENTITY_REFRESH_BACKOFF" envDefault:"2s"`
	IdleTimeout       time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"8h"`
}

func (i *IdentityOptions) Validate() error {
	if i.RefreshThreshold <= 0 {
		return fmt.Errorf("identity RefreshThreshold must be positive, got %s", i.RefreshThreshold)
	}
	if i.RefreshMaxRetries < 1 {
		return fmt.Errorf("identity RefreshMaxRetries must be at least 1, got %d", i.RefreshMaxRetries)
	}
	if i.IdleTimeout <= 0 {
		return fmt.Errorf("identity IdleTimeout must be positive, got %s", i.IdleTimeout)
	}
	return nil
}

// DirectoryOptions controls the periodic directory snapshot refresh.
type DirectoryOptions struct {
	RefreshInterval time.Duration `env:"DIRECTORY_REFRESH_INTERVAL" envDefault:"5m"`
	RefreshTimeout  time.Duration `env:"DIRECTORY_REFRESH_TIMEOUT" envDefault:"30s"`
	MaxRetries      int           `env:"DIRECTORY_REFRESH_MAX_RETRIES" envDefault:"3"`
	RetryBackoff    time.Duration `env:"DIRECTORY_REFRESH_BACKOFF" envDefault:"5s"`
}

func (d *DirectoryOptions) Validate() error {
	if d.RefreshInterval <= 0 {
		return fmt.Errorf("directory RefreshInterval must be positive, got %s", d.RefreshInterval)
	}
	if d.MaxRetries < 1 {
		return fmt.Errorf("directory MaxRetries must be at least 1, got %d", d.MaxRetries)
	}
	return nil
}

type AuthzOptions struct {
	ModelPath  string `env:"AUTHZ_MODEL_PATH" envDefault:"config/access/model.conf"`
	PolicyPath string `env:"AUTHZ_POLICY_PATH" envDefault:"config/access/policy.csv"`
	Mode       string `env:"AUTHZ_MODE" envDefault:"shadow"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database   DatabaseOptions
	Identity   IdentityOptions
	Directory  DirectoryOptions
	Authz      AuthzOptions
	Prometheus PrometheusOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	Domain           string `env:"DOMAIN" envDefault:"localhost"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	// The server looks for this header in the request; when absent it generates a random uuidv4.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// The server looks for this header in the request; when absent it uses request.RemoteAddr.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("identity configuration error: %w", err)
	}
	if err := c.Directory.Validate(); err != nil {
		return fmt.Errorf("directory configuration error: %w", err)
	}
	if err := c.validateAuthzMode(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validateAuthzMode() error {
	mode := strings.ToLower(strings.TrimSpace(c.Authz.Mode))
	if mode == "" {
		mode = "shadow"
	}
	switch mode {
	case "disabled", "shadow", "enforce":
	default:
		return fmt.Errorf("invalid AUTHZ_MODE=%q (expected disabled|shadow|enforce)", c.Authz.Mode)
	}
	c.Authz.Mode = mode
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
