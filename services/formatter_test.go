package services

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"agenda-widget/models"
)

func strptr(s string) *string { return &s }

// 2026-10-20 — вторник.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.October, 20, hour, minute, 0, 0, time.UTC)
}

func slot(day time.Weekday, start, end string, subject *string) models.ScheduleSlot {
	s, _ := models.ParseTimeOfDay(start)
	e, _ := models.ParseTimeOfDay(end)
	return models.ScheduleSlot{Day: models.Weekday(day), Start: s, End: e, SubjectID: subject}
}

func TestFormatSkipsStartedClasses(t *testing.T) {
	slots := []models.ScheduleSlot{
		slot(time.Tuesday, "07:30", "08:20", strptr("S1")),
		slot(time.Tuesday, "09:00", "09:50", strptr("S2")),
	}
	subjects := map[string]models.Subject{
		"S1": {Name: "Cálculo", Room: "A-101"},
		"S2": {Name: "Física", Room: "B-202"},
	}

	view := Format(tuesdayAt(8, 0), slots, subjects, nil)

	if len(view.Classes) != 1 {
		t.Fatalf("got %d classes, want 1: %+v", len(view.Classes), view.Classes)
	}
	got := view.Classes[0]
	if got.Start != "09:00" || got.Subject != "Física" || got.Room != "B-202" {
		t.Errorf("unexpected class line %+v", got)
	}
	if !strings.Contains(view.Status, "Física") || !strings.Contains(view.Status, "B-202") {
		t.Errorf("status %q does not mention S2", view.Status)
	}
	if view.CurrentSubject != "Cálculo" {
		t.Errorf("CurrentSubject = %q, want Cálculo", view.CurrentSubject)
	}
	if view.DayLabel != "Martes" || view.DateLabel != "20 de octubre" {
		t.Errorf("labels = %q %q", view.DayLabel, view.DateLabel)
	}
}

func TestFormatNoMoreClasses(t *testing.T) {
	slots := []models.ScheduleSlot{slot(time.Tuesday, "07:30", "08:20", nil)}
	view := Format(tuesdayAt(20, 0), slots, nil, nil)
	if view.Status != TextNoMoreClasses || view.ClassesText != TextNoMoreClasses {
		t.Errorf("status = %q text = %q", view.Status, view.ClassesText)
	}
	if len(view.Classes) != 0 {
		t.Errorf("expected no classes, got %v", view.Classes)
	}
}

func TestFormatMissingSubjectUsesPlaceholders(t *testing.T) {
	slots := []models.ScheduleSlot{
		slot(time.Tuesday, "10:00", "10:50", strptr("ghost")),
		slot(time.Tuesday, "11:00", "11:50", nil),
	}
	slots[1].Room = "Lab 3"

	view := Format(tuesdayAt(9, 0), slots, map[string]models.Subject{}, nil)
	if len(view.Classes) != 2 {
		t.Fatalf("got %d classes, want 2", len(view.Classes))
	}
	if view.Classes[0].Subject != TextNoSubject || view.Classes[0].Room != TextNoRoom {
		t.Errorf("first line %+v", view.Classes[0])
	}
	if view.Classes[1].Room != "Lab 3" {
		t.Errorf("slot room not used: %+v", view.Classes[1])
	}
}

func TestFormatSortsNumericallyAndLimits(t *testing.T) {
	slots := []models.ScheduleSlot{
		slot(time.Tuesday, "10:00", "10:50", strptr("a")),
		slot(time.Tuesday, "7:30", "8:20", strptr("b")),
		slot(time.Tuesday, "9:00", "9:50", strptr("c")),
		slot(time.Tuesday, "9:00", "9:50", strptr("d")),
		slot(time.Wednesday, "8:00", "8:50", strptr("e")),
	}
	view := Format(tuesdayAt(7, 0), slots, nil, nil)
	want := []string{"07:30", "09:00", "09:00"}
	if len(view.Classes) != len(want) {
		t.Fatalf("got %d classes, want %d", len(view.Classes), len(want))
	}
	for i, w := range want {
		if view.Classes[i].Start != w {
			t.Errorf("class %d start = %s, want %s", i, view.Classes[i].Start, w)
		}
	}
	// равные времена сохраняют исходный порядок
	up := UpcomingSlots(tuesdayAt(7, 0), slots)
	if *up[1].SubjectID != "c" || *up[2].SubjectID != "d" {
		t.Errorf("tie order broken: %s %s", *up[1].SubjectID, *up[2].SubjectID)
	}
}

func TestUpcomingSlotsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		var slots []models.ScheduleSlot
		n := rng.Intn(12)
		for i := 0; i < n; i++ {
			start := models.TimeOfDay(rng.Intn(24 * 60))
			slots = append(slots, models.ScheduleSlot{
				Day:   models.Weekday(rng.Intn(7)),
				Start: start,
				End:   start + 50,
			})
		}
		now := time.Date(2026, time.October, 18+rng.Intn(7), rng.Intn(24), rng.Intn(60), 0, 0, time.UTC)

		got := UpcomingSlots(now, slots)
		if len(got) > 3 {
			t.Fatalf("returned %d slots", len(got))
		}
		for i, s := range got {
			if time.Weekday(s.Day) != now.Weekday() {
				t.Fatalf("slot from %v included on %v", time.Weekday(s.Day), now.Weekday())
			}
			if s.Start < models.TimeOfDayOf(now) {
				t.Fatalf("slot at %s included at %s", s.Start, now.Format("15:04"))
			}
			if i > 0 && got[i-1].Start > s.Start {
				t.Fatalf("slots not sorted: %s before %s", got[i-1].Start, s.Start)
			}
		}
	}
}

func TestFormatEvents(t *testing.T) {
	now := tuesdayAt(12, 0)
	events := []models.Event{
		{Title: "Pasado", At: tuesdayAt(9, 0)},
		{Title: "Ahora", At: now},
		{Title: "Tarde", At: tuesdayAt(18, 30)},
		{Title: "Pronto", At: tuesdayAt(15, 0)},
		{Title: "Mañana", At: tuesdayAt(12, 0).AddDate(0, 0, 1)},
	}

	view := Format(now, nil, nil, events)
	if view.NextEventTitle != "Pronto" || view.NextEventTime != "15:00" {
		t.Errorf("next event = %q at %q", view.NextEventTitle, view.NextEventTime)
	}
	if view.EventsToday != 4 {
		t.Errorf("EventsToday = %d, want 4", view.EventsToday)
	}
	if view.PendingEvents != 2 {
		t.Errorf("PendingEvents = %d, want 2", view.PendingEvents)
	}
	if !strings.Contains(view.EventsText, "Eventos pendientes: 2") {
		t.Errorf("EventsText = %q", view.EventsText)
	}
}

func TestFormatEventsEdgeCases(t *testing.T) {
	now := tuesdayAt(12, 0)

	empty := Format(now, nil, nil, nil)
	if empty.EventsText != TextNoEventsToday || empty.EventsToday != 0 {
		t.Errorf("empty: text %q count %d", empty.EventsText, empty.EventsToday)
	}

	past := Format(now, nil, nil, []models.Event{{Title: "x", At: now}, {Title: "y", At: tuesdayAt(8, 0)}})
	if past.EventsText != TextNoPendingEvents || past.NextEventTitle != "" {
		t.Errorf("past only: text %q next %q", past.EventsText, past.NextEventTitle)
	}

	untitled := Format(now, nil, nil, []models.Event{{At: tuesdayAt(13, 0)}})
	if untitled.NextEventTitle != TextDefaultEvent {
		t.Errorf("untitled next = %q", untitled.NextEventTitle)
	}
}

func TestFormatSnapshot(t *testing.T) {
	now := tuesdayAt(10, 0)
	view := FormatSnapshot(now, models.WidgetSnapshot{
		EventsToday:    3,
		NextEventTitle: "Examen",
		NextEventTime:  "16:00",
		ScheduleStatus: "2 clases restantes",
		CurrentSubject: "Química",
		LastUpdate:     tuesdayAt(9, 45),
	})
	if !strings.Contains(view.ClassesText, "Química") || view.Status != "2 clases restantes" {
		t.Errorf("classes text %q status %q", view.ClassesText, view.Status)
	}
	if !strings.Contains(view.EventsText, "Examen") || !strings.Contains(view.EventsText, "Eventos hoy: 3") {
		t.Errorf("events text %q", view.EventsText)
	}
	if view.LastUpdated != "Actualizado: 09:45" {
		t.Errorf("LastUpdated = %q", view.LastUpdated)
	}
	if view.PendingEvents != 0 {
		t.Errorf("PendingEvents = %d, snapshot carries no pending count", view.PendingEvents)
	}

	def := FormatSnapshot(now, models.DefaultSnapshot())
	if def.Status != models.DefaultScheduleStatus || def.EventsText != TextNoEventsToday || def.LastUpdated != TextNeverUpdated {
		t.Errorf("default snapshot view %+v", def)
	}
}
