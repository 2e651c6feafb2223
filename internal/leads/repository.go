package leads

import "context"

// Repository records completed leads. The Postgres implementation backs the
// record sink.
type Repository interface {
	Save(ctx context.Context, lead Lead) error
}
