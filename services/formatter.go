package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"agenda-widget/models"
)

const maxClassLines = 3

// Format строит строки виджета из расписания и событий на момент now.
// Не возвращает ошибок: отсутствующие данные превращаются в заглушки.
func Format(now time.Time, slots []models.ScheduleSlot, subjects map[string]models.Subject, events []models.Event) models.WidgetView {
	view := baseView(now)

	applyClasses(&view, now, slots, subjects)
	applyEvents(&view, now, events)

	return view
}

// FormatSnapshot отрисовывает снимок, сохранённый приложением.
func FormatSnapshot(now time.Time, snap models.WidgetSnapshot) models.WidgetView {
	view := baseView(now)

	view.Status = snap.ScheduleStatus
	if view.Status == "" {
		view.Status = models.DefaultScheduleStatus
	}
	view.CurrentSubject = snap.CurrentSubject
	view.ClassesText = view.Status
	if snap.CurrentSubject != "" {
		view.ClassesText = "📚 Ahora: " + snap.CurrentSubject + "\n" + view.Status
	}

	view.EventsToday = snap.EventsToday
	view.NextEventTitle = snap.NextEventTitle
	view.NextEventTime = snap.NextEventTime
	switch {
	case snap.NextEventTitle != "":
		text := "🔔 Próximo: " + snap.NextEventTitle
		if snap.NextEventTime != "" {
			text += "\n   " + snap.NextEventTime
		}
		if snap.EventsToday > 1 {
			text += fmt.Sprintf("\n\nEventos hoy: %d", snap.EventsToday)
		}
		view.EventsText = text
	case snap.EventsToday > 0:
		view.EventsText = TextNoPendingEvents
	default:
		view.EventsText = TextNoEventsToday
	}

	if snap.LastUpdate.IsZero() {
		view.LastUpdated = TextNeverUpdated
	} else {
		view.LastUpdated = "Actualizado: " + snap.LastUpdate.In(now.Location()).Format("15:04")
	}
	return view
}

// SignInView — состояние виджета без вошедшего пользователя.
func SignInView(now time.Time) models.WidgetView {
	view := baseView(now)
	view.Status = TextSignIn
	view.ClassesText = TextSignIn
	return view
}

func baseView(now time.Time) models.WidgetView {
	return models.WidgetView{
		DayLabel:    DayLabel(now),
		DateLabel:   DateLabel(now),
		Classes:     []models.ClassLine{},
		LastUpdated: "Actualizado: " + now.Format("15:04"),
		RenderedAt:  now,
	}
}

func DayLabel(t time.Time) string {
	return models.SpanishDayNames[t.Weekday()]
}

// DateLabel форматирует дату как "19 de octubre".
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%02d de %s", t.Day(), spanishMonths[t.Month()-1])
}

// UpcomingSlots возвращает до трёх сегодняшних занятий, которые ещё не начались.
func UpcomingSlots(now time.Time, slots []models.ScheduleSlot) []models.ScheduleSlot {
	today := models.Weekday(now.Weekday())
	current := models.TimeOfDayOf(now)

	upcoming := make([]models.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Day == today && slot.Start >= current {
			upcoming = append(upcoming, slot)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Start < upcoming[j].Start
	})
	if len(upcoming) > maxClassLines {
		upcoming = upcoming[:maxClassLines]
	}
	return upcoming
}

func applyClasses(view *models.WidgetView, now time.Time, slots []models.ScheduleSlot, subjects map[string]models.Subject) {
	today := models.Weekday(now.Weekday())
	current := models.TimeOfDayOf(now)
	for _, slot := range slots {
		if slot.Day == today && slot.Start <= current && current < slot.End {
			view.CurrentSubject, _ = resolveSubject(slot, subjects)
			break
		}
	}

	for _, slot := range UpcomingSlots(now, slots) {
		name, room := resolveSubject(slot, subjects)
		view.Classes = append(view.Classes, models.ClassLine{
			Start:   slot.Start.String(),
			Subject: name,
			Room:    room,
		})
	}

	if len(view.Classes) == 0 {
		view.Status = TextNoMoreClasses
		view.ClassesText = TextNoMoreClasses
		return
	}

	blocks := make([]string, 0, len(view.Classes))
	for _, line := range view.Classes {
		blocks = append(blocks, fmt.Sprintf("🕐 %s\n%s\n📍 %s", line.Start, line.Subject, line.Room))
	}
	view.ClassesText = strings.Join(blocks, "\n\n")
	first := view.Classes[0]
	view.Status = fmt.Sprintf("%s %s · %s", first.Start, first.Subject, first.Room)
}

// resolveSubject не падает на битой ссылке: неизвестный предмет становится заглушкой.
func resolveSubject(slot models.ScheduleSlot, subjects map[string]models.Subject) (name, room string) {
	name, room = TextNoSubject, slot.Room
	if slot.SubjectID != nil {
		if subject, ok := subjects[*slot.SubjectID]; ok {
			if subject.Name != "" {
				name = subject.Name
			}
			if subject.Room != "" {
				room = subject.Room
			}
		}
	}
	if room == "" {
		room = TextNoRoom
	}
	return name, room
}

func applyEvents(view *models.WidgetView, now time.Time, events []models.Event) {
	start, end := DayBounds(now)

	var future []models.Event
	for _, event := range events {
		if event.At.Before(start) || !event.At.Before(end) {
			continue
		}
		view.EventsToday++
		if event.At.After(now) {
			future = append(future, event)
		}
	}
	sort.SliceStable(future, func(i, j int) bool {
		return future[i].At.Before(future[j].At)
	})
	view.PendingEvents = len(future)

	switch {
	case view.EventsToday == 0:
		view.EventsText = TextNoEventsToday
	case len(future) == 0:
		view.EventsText = TextNoPendingEvents
	default:
		next := future[0]
		view.NextEventTitle = next.Title
		if view.NextEventTitle == "" {
			view.NextEventTitle = TextDefaultEvent
		}
		view.NextEventTime = next.At.In(now.Location()).Format("15:04")

		text := fmt.Sprintf("🔔 Próximo: %s\n   %s", view.NextEventTitle, view.NextEventTime)
		if len(future) > 1 {
			text += fmt.Sprintf("\n\nEventos pendientes: %d", len(future))
		}
		view.EventsText = text
	}
}

// DayBounds возвращает [полночь сегодня, полночь завтра) в зоне now.
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
