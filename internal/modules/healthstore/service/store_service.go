package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pulse/internal/modules/healthstore/domain"
	healthstoreout "pulse/internal/modules/healthstore/port/out"
	"pulse/internal/platform/clock"
	apperrors "pulse/internal/platform/errors"
	"pulse/internal/platform/id"
	"pulse/internal/platform/metrics"
	"pulse/internal/platform/tx"
)

type StoreService struct {
	idGen   id.Generator
	records healthstoreout.RecordStore
	grants  healthstoreout.GrantStore
	consent domain.ConsentPolicy
	tx      tx.Manager
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewStoreService(idGen id.Generator, records healthstoreout.RecordStore, grants healthstoreout.GrantStore, consent domain.ConsentPolicy, m *metrics.Metrics, log zerolog.Logger) *StoreService {
	if consent == "" {
		consent = domain.ConsentAllow
	}
	return &StoreService{
		idGen:   idGen,
		records: records,
		grants:  grants,
		consent: consent,
		tx:      &tx.Serial{},
		metrics: m,
		log:     log.With().Str("component", "healthstore").Logger(),
	}
}

func (s *StoreService) Granted(ctx context.Context) (domain.CapabilitySet, error) {
	granted, err := s.grants.Load(ctx)
	s.metrics.ObserveStoreCall("granted", err)
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// Request runs the consent flow for requested and returns the granted
// snapshot once it completes.
func (s *StoreService) Request(ctx context.Context, requested domain.CapabilitySet) (domain.CapabilitySet, error) {
	granted, err := s.request(ctx, requested)
	s.metrics.ObserveStoreCall("request", err)
	return granted, err
}

func (s *StoreService) request(ctx context.Context, requested domain.CapabilitySet) (domain.CapabilitySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.consent == domain.ConsentDeny {
		s.log.Info().Strs("requested", capabilityStrings(requested)).Msg("capability request denied by policy")
		return s.grants.Load(ctx)
	}
	next, err := s.update(ctx, func(current domain.CapabilitySet) domain.CapabilitySet {
		return current.Union(requested)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Strs("granted", capabilityStrings(next)).Msg("capabilities granted")
	return next, nil
}

func (s *StoreService) Grant(ctx context.Context, caps domain.CapabilitySet) (domain.CapabilitySet, error) {
	return s.update(ctx, func(current domain.CapabilitySet) domain.CapabilitySet { return current.Union(caps) })
}

func (s *StoreService) Revoke(ctx context.Context, caps domain.CapabilitySet) (domain.CapabilitySet, error) {
	return s.update(ctx, func(current domain.CapabilitySet) domain.CapabilitySet { return current.Without(caps) })
}

// update applies fn to the stored grants as one read-modify-write.
func (s *StoreService) update(ctx context.Context, fn func(domain.CapabilitySet) domain.CapabilitySet) (domain.CapabilitySet, error) {
	var next domain.CapabilitySet
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		current, err := s.grants.Load(ctx)
		if err != nil {
			return err
		}
		next = fn(current)
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.grants.Save(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (s *StoreService) Insert(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	stored, err := s.insert(ctx, records)
	s.metrics.ObserveStoreCall("insert", err)
	return stored, err
}

func (s *StoreService) insert(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	if err := s.require(ctx, domain.CapabilityWriteHeartRate); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to insert", apperrors.ErrInvalidInput)
	}
	stored := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		r.ID = s.idGen.New()
		stored = append(stored, r)
	}
	if err := s.records.Insert(ctx, stored); err != nil {
		s.log.Error().Err(err).Int("count", len(stored)).Msg("insert records")
		return nil, err
	}
	return stored, nil
}

func (s *StoreService) Query(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	records, err := s.query(ctx, from, to)
	s.metrics.ObserveStoreCall("query", err)
	return records, err
}

func (s *StoreService) query(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	if err := s.require(ctx, domain.CapabilityReadHeartRate); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes start", apperrors.ErrInvalidInput)
	}
	// Open-ended ranges are clamped to what the store can encode.
	if from.Before(clock.EarliestEncodable) {
		from = clock.EarliestEncodable
	}
	if to.After(clock.LatestEncodable) {
		to = clock.LatestEncodable
	}
	return s.records.Query(ctx, from, to)
}

func (s *StoreService) require(ctx context.Context, c domain.Capability) error {
	granted, err := s.grants.Load(ctx)
	if err != nil {
		return err
	}
	if !granted.Has(c) {
		return fmt.Errorf("%w: %s not granted", apperrors.ErrPermissionDenied, c)
	}
	return nil
}

func capabilityStrings(set domain.CapabilitySet) []string {
	out := make([]string, 0, len(set))
	for _, c := range set {
		out = append(out, string(c))
	}
	return out
}
