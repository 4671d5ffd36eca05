package out

import (
	"context"
	"time"

	"pulse/internal/modules/heartrate/domain"
)

type SampleStore interface {
	Insert(ctx context.Context, samples []domain.Sample) error
	// Query returns samples whose time falls within [from, to].
	Query(ctx context.Context, from, to time.Time) ([]domain.Sample, error)
}
