package out

import (
	"context"
	"time"

	"pulse/internal/modules/healthstore/domain"
)

type RecordStore interface {
	Insert(ctx context.Context, records []domain.Record) error
	// Query returns records whose start lies in [from, to], in insertion order.
	Query(ctx context.Context, from, to time.Time) ([]domain.Record, error)
}

type GrantStore interface {
	Load(ctx context.Context) (domain.CapabilitySet, error)
	Save(ctx context.Context, grants domain.CapabilitySet) error
}
