package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"agenda-widget/models"

	"gorm.io/gorm"
)

// HorarioRecord — документ расписания в SQL; слоты и предметы лежат JSON-текстом.
type HorarioRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	EsActivo  bool   `gorm:"index"`
	Slots     string `gorm:"type:text"`
	Materias  string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (HorarioRecord) TableName() string { return "horarios" }

type EventoRecord struct {
	ID     uint      `gorm:"primaryKey"`
	UID    string    `gorm:"column:uid;index;not null"`
	Titulo string    `gorm:"not null"`
	Fecha  time.Time `gorm:"index;not null"`
}

func (EventoRecord) TableName() string { return "eventos" }

// BeforeSave приводит fecha к UTC: sqlite хранит время текстом и сравнивает строки.
func (e *EventoRecord) BeforeSave(*gorm.DB) error {
	e.Fecha = e.Fecha.UTC()
	return nil
}

type SQLRemote struct {
	db *gorm.DB
}

func NewSQLRemote(db *gorm.DB) (*SQLRemote, error) {
	if err := db.AutoMigrate(&HorarioRecord{}, &EventoRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate remote tables: %w", err)
	}
	return &SQLRemote{db: db}, nil
}

func (r *SQLRemote) ActiveSchedule(ctx context.Context, userID string) (*models.ScheduleDocument, error) {
	var records []HorarioRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND es_activo = ?", userID, true).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: horarios: %w", ErrRemoteQuery, err)
	}
	if len(records) == 0 {
		return nil, ErrNoActiveSchedule
	}

	rec := records[0]
	doc := &models.ScheduleDocument{
		ID:     strconv.FormatUint(uint64(rec.ID), 10),
		UserID: rec.UserID,
		Active: rec.EsActivo,
	}
	if rec.Slots != "" {
		if err := json.Unmarshal([]byte(rec.Slots), &doc.Slots); err != nil {
			return nil, fmt.Errorf("%w: horario %d slots: %w", ErrRemoteQuery, rec.ID, err)
		}
	}
	if rec.Materias != "" {
		if err := json.Unmarshal([]byte(rec.Materias), &doc.Subjects); err != nil {
			return nil, fmt.Errorf("%w: horario %d materias: %w", ErrRemoteQuery, rec.ID, err)
		}
	}
	return doc, nil
}

func (r *SQLRemote) EventsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	var records []EventoRecord
	err := r.db.WithContext(ctx).
		Where("uid = ? AND fecha >= ? AND fecha < ?", userID, from.UTC(), to.UTC()).
		Order("fecha asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: eventos: %w", ErrRemoteQuery, err)
	}

	events := make([]models.Event, 0, len(records))
	for _, rec := range records {
		events = append(events, models.Event{
			ID:      strconv.FormatUint(uint64(rec.ID), 10),
			Title:   rec.Titulo,
			At:      rec.Fecha,
			OwnerID: rec.UID,
		})
	}
	return events, nil
}
