package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"agenda-widget/models"
)

type fakeRemote struct {
	doc         *models.ScheduleDocument
	scheduleErr error
	events      []models.Event
	eventsErr   error
	calls       int
}

func (f *fakeRemote) ActiveSchedule(context.Context, string) (*models.ScheduleDocument, error) {
	f.calls++
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	if f.doc == nil {
		return nil, ErrNoActiveSchedule
	}
	return f.doc, nil
}

func (f *fakeRemote) EventsBetween(_ context.Context, _ string, from, to time.Time) ([]models.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	var out []models.Event
	for _, e := range f.events {
		if !e.At.Before(from) && e.At.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func testDocument() *models.ScheduleDocument {
	s1, s2 := "S1", "S2"
	return &models.ScheduleDocument{
		ID:     "h1",
		UserID: "u-1",
		Active: true,
		Slots: []models.RawSlot{
			{Day: "Martes", Time: "7:30 - 8:20 (M1)", SubjectID: &s1},
			{Day: "Martes", Time: "9:00 - 9:50 (M2)", SubjectID: &s2},
		},
		Subjects: map[string]models.Subject{
			"S1": {Name: "Cálculo", Room: "A-101"},
			"S2": {Name: "Física", Room: "B-202"},
		},
	}
}

func TestRemoteDataSourceSignIn(t *testing.T) {
	remote := &fakeRemote{doc: testDocument()}
	source := NewRemoteDataSource(remote, NewSnapshotStore(NewMemoryPreferences(), ""))

	view := source.Compose(context.Background(), models.WidgetInstance{ID: 1}, tuesdayAt(8, 0))
	if view.ClassesText != TextSignIn || view.EventsText != "" {
		t.Errorf("unauthenticated view %+v", view)
	}
	if remote.calls != 0 {
		t.Error("remote queried without a user")
	}
}

func TestRemoteDataSourceComposesAndPersists(t *testing.T) {
	remote := &fakeRemote{
		doc:    testDocument(),
		events: []models.Event{{Title: "Entrega", At: tuesdayAt(11, 0), OwnerID: "u-1"}},
	}
	store := NewSnapshotStore(NewMemoryPreferences(), "")
	source := NewRemoteDataSource(remote, store)
	ctx := context.Background()

	view := source.Compose(ctx, models.WidgetInstance{ID: 1, UserID: "u-1"}, tuesdayAt(8, 0))
	if len(view.Classes) != 1 || view.Classes[0].Subject != "Física" {
		t.Errorf("classes %+v", view.Classes)
	}
	if view.NextEventTitle != "Entrega" || view.EventsToday != 1 {
		t.Errorf("events: next %q count %d", view.NextEventTitle, view.EventsToday)
	}

	snap := store.ForUser("u-1").Load(ctx)
	if snap.NextEventTitle != "Entrega" || snap.CurrentSubject != "Cálculo" || snap.EventsToday != 1 {
		t.Errorf("persisted snapshot %+v", snap)
	}
	if got := store.Load(ctx); got != models.DefaultSnapshot() {
		t.Errorf("remote render overwrote the app snapshot: %+v", got)
	}
}

func TestRemoteDataSourceKeepsUsersApart(t *testing.T) {
	s1 := "S1"
	other := &models.ScheduleDocument{
		ID:       "h2",
		UserID:   "u-2",
		Active:   true,
		Slots:    []models.RawSlot{{Day: "Martes", Time: "7:30 - 8:20 (M1)", SubjectID: &s1}},
		Subjects: map[string]models.Subject{"S1": {Name: "Dibujo", Room: "C-3"}},
	}
	store := NewSnapshotStore(NewMemoryPreferences(), "widget.")
	ctx := context.Background()
	now := tuesdayAt(8, 0)

	NewRemoteDataSource(&fakeRemote{doc: testDocument()}, store).Compose(ctx, models.WidgetInstance{ID: 1, UserID: "u-1"}, now)
	NewRemoteDataSource(&fakeRemote{doc: other}, store).Compose(ctx, models.WidgetInstance{ID: 2, UserID: "u-2"}, now)

	if got := store.ForUser("u-1").Load(ctx).CurrentSubject; got != "Cálculo" {
		t.Errorf("u-1 current subject = %q, overwritten by another user", got)
	}
	if got := store.ForUser("u-2").Load(ctx).CurrentSubject; got != "Dibujo" {
		t.Errorf("u-2 current subject = %q", got)
	}
}

func TestRemoteDataSourceHalvesFailIndependently(t *testing.T) {
	ctx := context.Background()
	instance := models.WidgetInstance{ID: 1, UserID: "u-1"}
	now := tuesdayAt(8, 0)

	scheduleDown := &fakeRemote{
		scheduleErr: fmt.Errorf("%w: timeout", ErrRemoteQuery),
		events:      []models.Event{{Title: "Charla", At: tuesdayAt(10, 0)}},
	}
	view := NewRemoteDataSource(scheduleDown, NewSnapshotStore(NewMemoryPreferences(), "")).Compose(ctx, instance, now)
	if view.ClassesText != TextScheduleError || len(view.Classes) != 0 {
		t.Errorf("schedule failure view: %q %v", view.ClassesText, view.Classes)
	}
	if view.NextEventTitle != "Charla" {
		t.Errorf("events half lost on schedule failure: %q", view.EventsText)
	}

	eventsDown := &fakeRemote{doc: testDocument(), eventsErr: fmt.Errorf("%w: unavailable", ErrRemoteQuery)}
	store := NewSnapshotStore(NewMemoryPreferences(), "")
	view = NewRemoteDataSource(eventsDown, store).Compose(ctx, instance, now)
	if view.EventsText != TextEventsError || view.EventsToday != 0 {
		t.Errorf("events failure view: %q %d", view.EventsText, view.EventsToday)
	}
	if len(view.Classes) != 1 {
		t.Errorf("schedule half lost on events failure: %v", view.Classes)
	}
	if got := store.ForUser("u-1").Load(ctx); got != models.DefaultSnapshot() {
		t.Errorf("failed fetch persisted snapshot %+v", got)
	}

	noSchedule := &fakeRemote{}
	view = NewRemoteDataSource(noSchedule, NewSnapshotStore(NewMemoryPreferences(), "")).Compose(ctx, instance, now)
	if view.ClassesText != TextNoSchedule || view.EventsText != TextNoEventsToday {
		t.Errorf("no schedule view: %q / %q", view.ClassesText, view.EventsText)
	}
}

func TestCachedRemoteCachesSchedule(t *testing.T) {
	remote := &fakeRemote{doc: testDocument()}
	cache := NewScheduleCache(time.Minute, time.Minute)
	cached := NewCachedRemote(remote, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.ActiveSchedule(ctx, "u-1"); err != nil {
			t.Fatalf("ActiveSchedule: %v", err)
		}
	}
	if remote.calls != 1 {
		t.Errorf("remote called %d times, want 1", remote.calls)
	}

	cache.Invalidate("u-1")
	_, _ = cached.ActiveSchedule(ctx, "u-1")
	if remote.calls != 2 {
		t.Errorf("remote called %d times after invalidate, want 2", remote.calls)
	}

	empty := NewCachedRemote(&fakeRemote{}, NewScheduleCache(time.Minute, time.Minute))
	if _, err := empty.ActiveSchedule(ctx, "u-2"); err != ErrNoActiveSchedule {
		t.Errorf("err = %v, want ErrNoActiveSchedule", err)
	}
}

func TestProviderRefreshRendersEveryInstance(t *testing.T) {
	reg := NewWidgetRegistry()
	store := NewSnapshotStore(NewMemoryPreferences(), "widget.")
	provider := NewWidgetProvider(NewCachedSource(store), reg, time.UTC)
	provider.SetClock(func() time.Time { return tuesdayAt(10, 0) })
	reg.Bind(provider)

	ctx := context.Background()
	for id := 1; id <= 3; id++ {
		reg.Add(ctx, models.WidgetInstance{ID: id})
	}
	_ = store.Save(ctx, models.WidgetSnapshot{ScheduleStatus: "Todo listo", EventsToday: 1, NextEventTitle: "Cine"})

	provider.OnRefreshRequested(ctx)
	provider.Wait()

	for id := 1; id <= 3; id++ {
		view, ok := reg.View(id)
		if !ok {
			t.Fatalf("instance %d not rendered", id)
		}
		if view.Source != SourceCached || view.Status != "Todo listo" || !strings.Contains(view.EventsText, "Cine") {
			t.Errorf("instance %d view %+v", id, view)
		}
		if view.InstanceID != id || view.Sequence == 0 {
			t.Errorf("instance %d metadata %d/%d", id, view.InstanceID, view.Sequence)
		}
	}
}

func TestProviderWithBridgeEndToEnd(t *testing.T) {
	reg := NewWidgetRegistry()
	store := NewSnapshotStore(NewMemoryPreferences(), "widget.")
	provider := NewWidgetProvider(NewCachedSource(store), reg, time.UTC)
	reg.Bind(provider)
	bridge := NewBridge(store, provider)
	ctx := context.Background()

	reg.Add(ctx, models.WidgetInstance{ID: 1})
	r := bridge.Call(ctx, MethodUpdateWidget, map[string]interface{}{"scheduleStatus": "Examen final", "eventsToday": 0})
	if !r.OK {
		t.Fatalf("updateWidget = %+v", r)
	}
	provider.Wait()

	view, ok := reg.View(1)
	if !ok || view.Status != "Examen final" || view.EventsText != TextNoEventsToday {
		t.Errorf("view after bridge update %+v", view)
	}
}
