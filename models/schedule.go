package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday — день недели слота; в JSON хранится названием дня, как его пишет приложение.
type Weekday time.Weekday

var weekdayNames = map[string]time.Weekday{
	"lunes": time.Monday, "martes": time.Tuesday, "miercoles": time.Wednesday, "miércoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday, "sabado": time.Saturday, "sábado": time.Saturday,
	"domingo": time.Sunday,
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday, "sunday": time.Sunday,
}

// SpanishDayNames индексируются time.Weekday.
var SpanishDayNames = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

func ParseWeekday(s string) (Weekday, error) {
	if d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return Weekday(d), nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) String() string {
	return SpanishDayNames[time.Weekday(d)%7]
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay — минуты от полуночи.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay принимает "7:30" и "07:30".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return NewTimeOfDay(h, m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseSlotTime разбирает строку вида "7:30 - 8:20 (M1)". Конец необязателен.
func ParseSlotTime(s string) (start, end TimeOfDay, label string, err error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "("); i >= 0 {
		label = strings.Trim(strings.TrimSpace(s[i:]), "()")
		s = strings.TrimSpace(s[:i])
	}
	bounds := strings.SplitN(s, "-", 2)
	start, err = ParseTimeOfDay(bounds[0])
	if err != nil {
		return 0, 0, "", err
	}
	end = start
	if len(bounds) == 2 && strings.TrimSpace(bounds[1]) != "" {
		end, err = ParseTimeOfDay(bounds[1])
		if err != nil {
			return 0, 0, "", err
		}
	}
	return start, end, label, nil
}

// ScheduleSlot — одно еженедельное занятие.
type ScheduleSlot struct {
	Day       Weekday   `json:"day"`
	Start     TimeOfDay `json:"start"`
	End       TimeOfDay `json:"end"`
	SubjectID *string   `json:"subjectId,omitempty"`
	Room      string    `json:"room,omitempty"`
	Label     string    `json:"label,omitempty"`
}

type Subject struct {
	Name string `json:"nombre" firestore:"nombre"`
	Room string `json:"aula" firestore:"aula"`
}

// Event — разовое событие календаря.
type Event struct {
	ID      string    `json:"id,omitempty" firestore:"-"`
	Title   string    `json:"titulo" firestore:"titulo"`
	At      time.Time `json:"fecha" firestore:"fecha"`
	OwnerID string    `json:"uid" firestore:"uid"`
}

// RawSlot — слот в том виде, в котором его сохраняет приложение.
type RawSlot struct {
	Day       string  `json:"dia" firestore:"dia"`
	Time      string  `json:"hora" firestore:"hora"`
	SubjectID *string `json:"materiaId,omitempty" firestore:"materiaId"`
	Room      string  `json:"aula,omitempty" firestore:"aula"`
}

// ScheduleDocument — документ расписания пользователя ("horario").
type ScheduleDocument struct {
	ID       string             `json:"id,omitempty" firestore:"-"`
	UserID   string             `json:"userId" firestore:"userId"`
	Active   bool               `json:"esActivo" firestore:"esActivo"`
	Slots    []RawSlot          `json:"slots" firestore:"slots"`
	Subjects map[string]Subject `json:"materias" firestore:"materias"`
}

// ScheduleSlots разбирает слоты документа. Некорректные слоты пропускаются
// и возвращаются вторым значением для логирования.
func (d *ScheduleDocument) ScheduleSlots() ([]ScheduleSlot, []error) {
	slots := make([]ScheduleSlot, 0, len(d.Slots))
	var errs []error
	for i, raw := range d.Slots {
		day, err := ParseWeekday(raw.Day)
		if err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
			continue
		}
		start, end, label, err := ParseSlotTime(raw.Time)
		if err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
			continue
		}
		slots = append(slots, ScheduleSlot{
			Day:       day,
			Start:     start,
			End:       end,
			SubjectID: raw.SubjectID,
			Room:      raw.Room,
			Label:     label,
		})
	}
	return slots, errs
}
