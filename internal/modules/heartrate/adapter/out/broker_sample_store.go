package out

import (
	"context"
	"fmt"
	"time"

	"pulse/internal/modules/heartrate/domain"
	heartrateout "pulse/internal/modules/heartrate/port/out"
	"pulse/internal/platform/healthrpc"
)

// BrokerSampleStore persists samples through the health store broker.
type BrokerSampleStore struct {
	client healthrpc.Client
}

func NewBrokerSampleStore(client healthrpc.Client) heartrateout.SampleStore {
	return &BrokerSampleStore{client: client}
}

func (s *BrokerSampleStore) Insert(ctx context.Context, samples []domain.Sample) error {
	in := &healthrpc.InsertRequest{Records: make([]healthrpc.Record, 0, len(samples))}
	for _, sample := range samples {
		at := sample.Time.UnixNano()
		in.Records = append(in.Records, healthrpc.Record{
			BeatsPerMinute:    int64(sample.BeatsPerMinute),
			StartUnixNano:     at,
			EndUnixNano:       at,
			ZoneOffsetSeconds: int32(sample.ZoneOffsetSeconds),
		})
	}
	if _, err := s.client.Insert(ctx, in); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}
	return nil
}

func (s *BrokerSampleStore) Query(ctx context.Context, from, to time.Time) ([]domain.Sample, error) {
	out, err := s.client.Query(ctx, &healthrpc.QueryRequest{FromUnixNano: from.UnixNano(), ToUnixNano: to.UnixNano()})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	samples := make([]domain.Sample, 0, len(out.Records))
	for _, r := range out.Records {
		samples = append(samples, domain.Sample{
			ID:                r.ID,
			BeatsPerMinute:    int(r.BeatsPerMinute),
			Time:              time.Unix(0, r.StartUnixNano).UTC(),
			ZoneOffsetSeconds: int(r.ZoneOffsetSeconds),
		})
	}
	return samples, nil
}
