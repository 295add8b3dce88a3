package services

import (
	"context"
	"testing"
	"time"

	"agenda-widget/models"
)

func TestRegistryLifecycleHooks(t *testing.T) {
	reg := NewWidgetRegistry()
	lifecycle := &recordingLifecycle{}
	reg.Bind(lifecycle)
	ctx := context.Background()

	if !reg.Add(ctx, models.WidgetInstance{ID: 1}) {
		t.Fatal("first Add returned false")
	}
	reg.Add(ctx, models.WidgetInstance{ID: 2})
	if reg.Add(ctx, models.WidgetInstance{ID: 2, UserID: "u"}) {
		t.Error("duplicate Add returned true")
	}
	if inst, _ := reg.Instance(2); inst.UserID != "u" {
		t.Errorf("owner not updated: %+v", inst)
	}
	if lifecycle.first != 1 {
		t.Errorf("OnFirstInstanceAdded called %d times", lifecycle.first)
	}

	reg.Remove(ctx, 1)
	if lifecycle.last != 0 {
		t.Error("OnLastInstanceRemoved called with instances left")
	}
	reg.Remove(ctx, 2)
	if reg.Remove(ctx, 2) {
		t.Error("removing unknown instance returned true")
	}
	if lifecycle.last != 1 {
		t.Errorf("OnLastInstanceRemoved called %d times", lifecycle.last)
	}
}

func TestRegistryIgnoresStaleViews(t *testing.T) {
	reg := NewWidgetRegistry()
	reg.Add(context.Background(), models.WidgetInstance{ID: 7})

	if !reg.UpdateWidget(models.WidgetView{InstanceID: 7, Sequence: 5, Status: "new"}) {
		t.Fatal("fresh view rejected")
	}
	if reg.UpdateWidget(models.WidgetView{InstanceID: 7, Sequence: 3, Status: "old"}) {
		t.Error("stale view accepted")
	}
	if view, _ := reg.View(7); view.Status != "new" {
		t.Errorf("rendered status = %q", view.Status)
	}
	if reg.UpdateWidget(models.WidgetView{InstanceID: 99, Sequence: 10}) {
		t.Error("view for unknown instance accepted")
	}
}

func TestRegistrySubscribe(t *testing.T) {
	reg := NewWidgetRegistry()
	ctx := context.Background()
	reg.Add(ctx, models.WidgetInstance{ID: 1})

	ch, cancel, ok := reg.Subscribe(1)
	if !ok {
		t.Fatal("Subscribe failed")
	}
	defer cancel()

	reg.UpdateWidget(models.WidgetView{InstanceID: 1, Sequence: 1, Status: "hola"})
	select {
	case view := <-ch:
		if view.Status != "hola" {
			t.Errorf("got %q", view.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("no view delivered")
	}

	reg.Remove(ctx, 1)
	if _, open := <-ch; open {
		t.Error("channel not closed after Remove")
	}

	if _, _, ok := reg.Subscribe(1); ok {
		t.Error("subscribed to removed instance")
	}
}

func TestRegistryTimerRefreshes(t *testing.T) {
	reg := NewWidgetRegistry()
	lifecycle := &recordingLifecycle{}
	reg.Bind(lifecycle)
	reg.Add(context.Background(), models.WidgetInstance{ID: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	reg.RunTimer(ctx, 10*time.Millisecond)

	lifecycle.mu.Lock()
	defer lifecycle.mu.Unlock()
	if lifecycle.refresh == 0 {
		t.Error("timer never requested a refresh")
	}
}
