package employee

import "context"

// Repository reads employee records from the directory collaborator.
// The directory is eventually consistent; callers must treat every read as a
// full snapshot source, never as an incremental update.
type Repository interface {
	GetAll(ctx context.Context) ([]Employee, error)
	Count(ctx context.Context) (int64, error)
}
