package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pulse/internal/modules/heartrate/domain"
	heartrateout "pulse/internal/modules/heartrate/port/out"
	"pulse/internal/platform/clock"
)

type HeartRateService struct {
	clock       clock.Clock
	loc         *time.Location
	windowHours int
	store       heartrateout.SampleStore
	log         zerolog.Logger
}

func NewHeartRateService(clk clock.Clock, loc *time.Location, windowHours int, store heartrateout.SampleStore, log zerolog.Logger) *HeartRateService {
	if loc == nil {
		loc = time.UTC
	}
	return &HeartRateService{
		clock:       clk,
		loc:         loc,
		windowHours: windowHours,
		store:       store,
		log:         log.With().Str("component", "heartrate").Logger(),
	}
}

func (s *HeartRateService) Location() *time.Location {
	return s.loc
}

func (s *HeartRateService) Parse(rawRate, rawTimestamp string) (int, time.Time, error) {
	return domain.Validate(rawRate, rawTimestamp, s.loc)
}

// Save writes one reading. Input is validated before the store is touched.
func (s *HeartRateService) Save(ctx context.Context, bpm int, at time.Time) (domain.Sample, error) {
	sample, err := domain.NewSample(bpm, at, s.loc)
	if err != nil {
		return domain.Sample{}, err
	}
	if err := s.store.Insert(ctx, []domain.Sample{sample}); err != nil {
		return domain.Sample{}, err
	}
	s.log.Debug().Int("bpm", sample.BeatsPerMinute).Time("at", sample.Time).Msg("sample saved")
	return sample, nil
}

// Recent returns the samples inside the trailing window, newest first.
func (s *HeartRateService) Recent(ctx context.Context) ([]domain.Sample, error) {
	from, to := domain.Window(s.clock.Now(), s.windowHours)
	found, err := s.store.Query(ctx, from, to)
	if err != nil {
		return nil, err
	}
	kept := make([]domain.Sample, 0, len(found))
	for _, sample := range found {
		if domain.InWindow(sample, from, to) {
			kept = append(kept, sample)
		}
	}
	s.log.Debug().Int("count", len(kept)).Time("from", from).Time("to", to).Msg("samples loaded")
	return domain.SortNewestFirst(kept), nil
}
