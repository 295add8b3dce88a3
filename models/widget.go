package models

import "time"

// Ключи хранилища снимка; совпадают с полями, которые передаёт приложение.
const (
	KeyEventsToday    = "eventsToday"
	KeyNextEventTitle = "nextEventToday"
	KeyNextEventTime  = "nextEventTodayTime"
	KeyScheduleStatus = "scheduleStatus"
	KeyCurrentSubject = "currentSubject"
	KeyLastUpdate     = "lastUpdate"
)

const DefaultScheduleStatus = "Sin datos"

// WidgetSnapshot — единственная сохранённая проекция для отрисовки виджета.
type WidgetSnapshot struct {
	EventsToday    int       `json:"eventsToday"`
	NextEventTitle string    `json:"nextEventToday"`
	NextEventTime  string    `json:"nextEventTodayTime"`
	ScheduleStatus string    `json:"scheduleStatus"`
	CurrentSubject string    `json:"currentSubject"`
	LastUpdate     time.Time `json:"lastUpdate"`
}

func DefaultSnapshot() WidgetSnapshot {
	return WidgetSnapshot{ScheduleStatus: DefaultScheduleStatus}
}

type ClassLine struct {
	Start   string `json:"start"`
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

// WidgetView — плоский набор строк, который хост рисует в фиксированном макете.
type WidgetView struct {
	InstanceID     int         `json:"instanceId"`
	Sequence       uint64      `json:"sequence"`
	Source         string      `json:"source"`
	DayLabel       string      `json:"dayLabel"`
	DateLabel      string      `json:"dateLabel"`
	Classes        []ClassLine `json:"classes"`
	ClassesText    string      `json:"classesText"`
	Status         string      `json:"status"`
	CurrentSubject string      `json:"currentSubject"`
	NextEventTitle string      `json:"nextEventTitle"`
	NextEventTime  string      `json:"nextEventTime"`
	EventsText     string      `json:"eventsText"`
	EventsToday    int         `json:"eventsToday"`
	PendingEvents  int         `json:"pendingEvents"`
	LastUpdated    string      `json:"lastUpdated"`
	RenderedAt     time.Time   `json:"renderedAt"`
}

// Snapshot проецирует отрисованный вид обратно в сохраняемый снимок.
func (v WidgetView) Snapshot(at time.Time) WidgetSnapshot {
	return WidgetSnapshot{
		EventsToday:    v.EventsToday,
		NextEventTitle: v.NextEventTitle,
		NextEventTime:  v.NextEventTime,
		ScheduleStatus: v.Status,
		CurrentSubject: v.CurrentSubject,
		LastUpdate:     at,
	}
}

type WidgetInstance struct {
	ID      int       `json:"id"`
	UserID  string    `json:"userId,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}
