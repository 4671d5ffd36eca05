package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	healthstoreout "pulse/internal/modules/healthstore/adapter/out"
	"pulse/internal/modules/healthstore/domain"
	"pulse/internal/modules/healthstore/dto"
	healthstorein "pulse/internal/modules/healthstore/port/in"
	"pulse/internal/modules/healthstore/service"
	"pulse/internal/modules/healthstore/usecase"
	apperrors "pulse/internal/platform/errors"
	"pulse/internal/platform/metrics"
)

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return "rec-" + string(rune('0'+s.n))
}

func newStore(t *testing.T, consent domain.ConsentPolicy, m *metrics.Metrics) healthstorein.Usecase {
	t.Helper()
	dir := t.TempDir()
	records, err := healthstoreout.NewSQLiteRecordStore(filepath.Join(dir, "pulse.db"))
	if err != nil {
		t.Fatalf("new record store: %v", err)
	}
	t.Cleanup(func() { _ = records.Close() })
	grants := healthstoreout.NewFileGrantStore(filepath.Join(dir, "grants.yaml"))
	return usecase.NewInteractor(service.NewStoreService(&seqID{}, records, grants, consent, m, zerolog.Nop()))
}

var both = []string{string(domain.CapabilityReadHeartRate), string(domain.CapabilityWriteHeartRate)}

func TestRequestCapabilitiesAllowPolicyGrantsAndPersists(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentAllow, nil)
	before, err := uc.GrantedCapabilities(context.Background())
	if err != nil {
		t.Fatalf("granted: %v", err)
	}
	if len(before.Capabilities) != 0 {
		t.Fatalf("expected no grants initially, got %v", before.Capabilities)
	}
	out, err := uc.RequestCapabilities(context.Background(), dto.RequestInput{Capabilities: both})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(out.Capabilities) != 2 {
		t.Fatalf("expected both capabilities granted, got %v", out.Capabilities)
	}
	after, err := uc.GrantedCapabilities(context.Background())
	if err != nil {
		t.Fatalf("granted after request: %v", err)
	}
	if len(after.Capabilities) != 2 {
		t.Fatalf("grants should persist, got %v", after.Capabilities)
	}
}

func TestRequestCapabilitiesDenyPolicyKeepsGrants(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentDeny, nil)
	out, err := uc.RequestCapabilities(context.Background(), dto.RequestInput{Capabilities: both})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(out.Capabilities) != 0 {
		t.Fatalf("deny policy must not grant, got %v", out.Capabilities)
	}
	if _, err := uc.RequestCapabilities(context.Background(), dto.RequestInput{Capabilities: []string{"bogus"}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown capability, got %v", err)
	}
}

func TestRequestCapabilitiesHonorsCancellation(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentAllow, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uc.RequestCapabilities(ctx, dto.RequestInput{Capabilities: both}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	out, err := uc.GrantedCapabilities(context.Background())
	if err != nil {
		t.Fatalf("granted: %v", err)
	}
	if len(out.Capabilities) != 0 {
		t.Fatalf("cancelled request must not grant, got %v", out.Capabilities)
	}
}

func TestInsertAndQueryEnforcePermissions(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	uc := newStore(t, domain.ConsentAllow, m)
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	input := dto.InsertInput{Records: []dto.RecordInput{{BeatsPerMinute: 72, Start: at, End: at}}}

	if _, err := uc.Insert(context.Background(), input); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("insert without grant should be denied, got %v", err)
	}
	if _, err := uc.Query(context.Background(), dto.QueryInput{From: at, To: at}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("query without grant should be denied, got %v", err)
	}

	if _, err := uc.Grant(context.Background(), dto.RequestInput{Capabilities: []string{string(domain.CapabilityWriteHeartRate)}}); err != nil {
		t.Fatalf("grant write: %v", err)
	}
	out, err := uc.Insert(context.Background(), input)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(out.IDs) != 1 || out.IDs[0] != "rec-1" {
		t.Fatalf("expected store-assigned id, got %v", out.IDs)
	}
	if _, err := uc.Query(context.Background(), dto.QueryInput{From: at, To: at}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("write-only grant must not allow reads, got %v", err)
	}

	if _, err := uc.Grant(context.Background(), dto.RequestInput{Capabilities: []string{string(domain.CapabilityReadHeartRate)}}); err != nil {
		t.Fatalf("grant read: %v", err)
	}
	records, err := uc.Query(context.Background(), dto.QueryInput{From: at.Add(-time.Hour), To: at})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].ID != "rec-1" || records[0].BeatsPerMinute != 72 {
		t.Fatalf("unexpected records: %+v", records)
	}

	if got := testutil.ToFloat64(m.StoreCalls.WithLabelValues("insert", metrics.ResultError)); got != 1 {
		t.Fatalf("expected one failed insert, got %v", got)
	}
	if got := testutil.ToFloat64(m.StoreCalls.WithLabelValues("query", metrics.ResultOK)); got != 1 {
		t.Fatalf("expected one successful query, got %v", got)
	}
}

func TestInsertRejectsOutOfRangeAndReversedWindow(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentAllow, nil)
	if _, err := uc.Grant(context.Background(), dto.RequestInput{Capabilities: both}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if _, err := uc.Insert(context.Background(), dto.InsertInput{Records: []dto.RecordInput{{BeatsPerMinute: 301, Start: at, End: at}}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for 301 bpm, got %v", err)
	}
	far := time.Date(2300, 1, 1, 10, 0, 0, 0, time.UTC)
	if _, err := uc.Insert(context.Background(), dto.InsertInput{Records: []dto.RecordInput{{BeatsPerMinute: 72, Start: far, End: far}}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for an unencodable instant, got %v", err)
	}
	if _, err := uc.Insert(context.Background(), dto.InsertInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty insert, got %v", err)
	}
	if _, err := uc.Query(context.Background(), dto.QueryInput{From: at, To: at.Add(-time.Second)}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed window, got %v", err)
	}
}

func TestQueryClampsOpenEndedRange(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentAllow, nil)
	if _, err := uc.Grant(context.Background(), dto.RequestInput{Capabilities: both}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if _, err := uc.Insert(context.Background(), dto.InsertInput{Records: []dto.RecordInput{{BeatsPerMinute: 72, Start: at, End: at}}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	found, err := uc.Query(context.Background(), dto.QueryInput{From: time.Time{}, To: time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(found) != 1 || !found[0].Start.Equal(at) {
		t.Fatalf("expected the stored record back, got %+v", found)
	}
}

func TestRevokeRemovesCapability(t *testing.T) {
	t.Parallel()
	uc := newStore(t, domain.ConsentAllow, nil)
	if _, err := uc.Grant(context.Background(), dto.RequestInput{Capabilities: both}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	out, err := uc.Revoke(context.Background(), dto.RequestInput{Capabilities: []string{string(domain.CapabilityReadHeartRate)}})
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(out.Capabilities) != 1 || out.Capabilities[0] != string(domain.CapabilityWriteHeartRate) {
		t.Fatalf("unexpected grants after revoke: %v", out.Capabilities)
	}
}
