package app

import (
	"context"
	"testing"

	heartratedto "pulse/internal/modules/heartrate/dto"
	"pulse/internal/ui/components"
	heartrateview "pulse/internal/ui/views/heartrate"
)

type fakeSession struct {
	state heartratedto.SessionState
	loads int
}

func (f *fakeSession) Snapshot() heartratedto.SessionState { return f.state }
func (f *fakeSession) Submit(context.Context, string, string) heartratedto.SessionState {
	return f.state
}
func (f *fakeSession) Load(context.Context) heartratedto.SessionState {
	f.loads++
	return f.state
}
func (f *fakeSession) ClearError() heartratedto.SessionState {
	f.state.Error = ""
	return f.state
}
func (f *fakeSession) CheckPermissions(context.Context) heartratedto.SessionState   { return f.state }
func (f *fakeSession) RequestPermissions(context.Context) heartratedto.SessionState { return f.state }
func (f *fakeSession) OpenSettings(context.Context) heartratedto.SessionState       { return f.state }

func TestGrantedSnapshotSwitchesToHeartRateScreen(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeSession{}, nil, "/tmp/grants.yaml")
	if m.screen != screenPermission {
		t.Fatalf("expected permission screen before any grant")
	}

	next, cmd := m.Update(stateChangedMsg{state: heartratedto.SessionState{PermissionsGranted: true}, ok: true})
	got := next.(Model)
	if got.screen != screenHeartRate {
		t.Fatalf("expected heart-rate screen once granted")
	}
	if cmd == nil || !got.loaded {
		t.Fatalf("expected first switch to schedule a history load")
	}

	next, _ = got.Update(stateChangedMsg{state: heartratedto.SessionState{}, ok: true})
	if next.(Model).screen != screenPermission {
		t.Fatalf("revoked access must route back to the permission screen")
	}
}

func TestPaletteGatesHeartRateCommandsOnAccess(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeSession{}, nil, "/tmp/grants.yaml")
	next, cmd := m.Update(components.PaletteSubmitMsg{Input: "hr:load"})
	if cmd != nil {
		t.Fatalf("load must not run without access")
	}
	if status := next.(Model).status; status != "grant access first (perm:request)" {
		t.Fatalf("unexpected status %q", status)
	}

	next, _ = next.(Model).Update(components.PaletteSubmitMsg{Input: "bogus"})
	if status := next.(Model).status; status != "unknown command: bogus" {
		t.Fatalf("unexpected status %q", status)
	}
}

func TestPaletteSaveRequiresFullReading(t *testing.T) {
	t.Parallel()
	session := &fakeSession{state: heartratedto.SessionState{PermissionsGranted: true}}
	m := NewModel(session, nil, "/tmp/grants.yaml")
	next, _ := m.Update(stateChangedMsg{state: session.state, ok: true})

	next, cmd := next.(Model).Update(components.PaletteSubmitMsg{Input: "hr:save 72 2024-01-01"})
	if cmd != nil {
		t.Fatalf("partial reading must not be submitted")
	}
	if status := next.(Model).status; status != "usage: hr:save [<bpm> <yyyy-MM-dd> <HH:mm>]" {
		t.Fatalf("unexpected status %q", status)
	}
}

func TestOperationResultUpdatesStatus(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeSession{}, nil, "/tmp/grants.yaml")
	next, _ := m.Update(heartrateview.StateMsg{
		Op:    heartrateview.OpSubmit,
		State: heartratedto.SessionState{PermissionsGranted: true, Error: "Failed to save heart rate: disk full"},
	})
	got := next.(Model)
	if got.status != "save failed" {
		t.Fatalf("unexpected status %q", got.status)
	}
	if got.state.Error == "" {
		t.Fatalf("error slot should be carried into the root state")
	}

	next, _ = got.Update(heartrateview.StateMsg{
		Op:    heartrateview.OpLoad,
		State: heartratedto.SessionState{PermissionsGranted: true, Records: []heartratedto.SampleOutput{{BeatsPerMinute: 60}}},
	})
	if status := next.(Model).status; status != "1 reading in the last 24h" {
		t.Fatalf("unexpected status %q", status)
	}
}
