package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/modules/directory/domain/entities/snapshot"
	"github.com/orgsight/orgsight/pkg/eventbus"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrNoSnapshot is returned before the first successful load, and after an
	// integrity failure with no prior good version to fall back to.
	ErrNoSnapshot = serrors.NewError("DIRECTORY_NO_SNAPSHOT", "no directory snapshot available", "Directory.NoSnapshot")
)

type DirectoryServiceOptions struct {
	Repo            employee.Repository
	Bus             eventbus.EventBus
	Logger          *logrus.Logger
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
}

// DirectoryService owns the current directory snapshot. Readers always see a
// consistent, immutable version through an atomic pointer; refresh builds a
// new version off to the side and swaps it in whole.
type DirectoryService struct {
	repo            employee.Repository
	bus             eventbus.EventBus
	logger          *logrus.Entry
	refreshInterval time.Duration
	refreshTimeout  time.Duration
	maxRetries      int
	retryBackoff    time.Duration

	current    atomic.Pointer[snapshot.Snapshot]
	version    atomic.Uint64
	refreshMu  sync.Mutex
	invalidate chan struct{}
}

func NewDirectoryService(opts DirectoryServiceOptions) *DirectoryService {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 30 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &DirectoryService{
		repo:            opts.Repo,
		bus:             opts.Bus,
		logger:          logger.WithField("component", "directory"),
		refreshInterval: opts.RefreshInterval,
		refreshTimeout:  opts.RefreshTimeout,
		maxRetries:      opts.MaxRetries,
		retryBackoff:    opts.RetryBackoff,
		invalidate:      make(chan struct{}, 1),
	}
}

// Refresh loads the directory and activates a new snapshot version. On
// integrity errors the previous version stays current; resolution against the
// corrupt data is never served.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	records, err := s.repo.GetAll(loadCtx)
	if err != nil {
		return err
	}

	version := s.version.Add(1)
	snap, err := snapshot.Build(version, time.Now().UTC(), records)
	if err != nil {
		s.logger.WithError(err).Error("snapshot build rejected")
		return err
	}

	s.current.Store(snap)
	s.logger.WithFields(logrus.Fields{
		"version":   snap.Version(),
		"employees": snap.Size(),
	}).Info("directory snapshot activated")
	if s.bus != nil {
		s.bus.Publish(&snapshot.ActivatedEvent{
			Version:       snap.Version(),
			EmployeeCount: snap.Size(),
			LoadedAt:      snap.LoadedAt(),
		})
	}
	return nil
}

// RefreshWithRetry retries transient load failures with linear backoff.
// Integrity errors are not retried: the same data will fail again.
func (s *DirectoryService) RefreshWithRetry(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		lastErr = s.Refresh(ctx)
		if lastErr == nil {
			return nil
		}
		if snapshotIntegrityError(lastErr) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryBackoff):
		}
	}

	directoryRefreshFailures.Inc()
	if s.bus != nil {
		s.bus.Publish(&snapshot.RefreshFailedEvent{
			Version:  s.currentVersion(),
			Attempts: s.maxRetries,
			Err:      lastErr,
		})
	}
	return lastErr
}

// Start runs the refresh loop until ctx is cancelled. It blocks; callers run
// it on its own goroutine.
func (s *DirectoryService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.invalidate:
		}
		if err := s.RefreshWithRetry(ctx); err != nil {
			s.logger.WithError(err).Warn("directory refresh failed; last known good snapshot stays current")
		}
	}
}

// Invalidate signals the refresh loop to rebuild immediately.
func (s *DirectoryService) Invalidate() {
	select {
	case s.invalidate <- struct{}{}:
	default:
	}
}

// Snapshot returns the current snapshot or ErrNoSnapshot before first load.
func (s *DirectoryService) Snapshot() (*snapshot.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Stale reports whether the current snapshot has outlived the refresh TTL.
// Stale scopes may still be served but must be flagged to the caller.
func (s *DirectoryService) Stale() bool {
	snap := s.current.Load()
	if snap == nil {
		return true
	}
	return time.Since(snap.LoadedAt()) > s.refreshInterval
}

func (s *DirectoryService) currentVersion() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.Version()
	}
	return 0
}

func snapshotIntegrityError(err error) bool {
	return err != nil && serrors.IsCode(err, "DIRECTORY_INTEGRITY")
}
