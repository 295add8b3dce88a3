package services

import (
	"context"
	"fmt"
	"time"

	"agenda-widget/config"
	"agenda-widget/models"

	"gorm.io/gorm"
)

// RemoteSource — удалённое хранилище расписаний и событий.
type RemoteSource interface {
	// ActiveSchedule возвращает активный документ пользователя или ErrNoActiveSchedule.
	// Если активных несколько, берётся первый попавшийся.
	ActiveSchedule(ctx context.Context, userID string) (*models.ScheduleDocument, error)
	// EventsBetween возвращает события владельца в [from, to) по возрастанию времени.
	EventsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)
}

// NewRemoteSource выбирает бэкенд по REMOTE_BACKEND.
func NewRemoteSource(ctx context.Context, cfg *config.Config, db *gorm.DB, minioService *MinIOService) (RemoteSource, error) {
	switch cfg.RemoteBackend {
	case "minio":
		return NewMinIORemote(minioService), nil
	case "sql":
		if db == nil {
			return nil, fmt.Errorf("remote %q needs a database connection", cfg.RemoteBackend)
		}
		return NewSQLRemote(db)
	case "firestore":
		return NewFirestoreRemote(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	default:
		return nil, fmt.Errorf("%w: remote %q", ErrUnknownBackend, cfg.RemoteBackend)
	}
}

// CachedRemote кэширует документы расписания поверх любого RemoteSource.
type CachedRemote struct {
	RemoteSource
	cache *ScheduleCache
}

func NewCachedRemote(remote RemoteSource, cache *ScheduleCache) *CachedRemote {
	return &CachedRemote{RemoteSource: remote, cache: cache}
}

func (r *CachedRemote) ActiveSchedule(ctx context.Context, userID string) (*models.ScheduleDocument, error) {
	if doc, found := r.cache.Get(userID); found {
		return doc, nil
	}
	doc, err := r.RemoteSource.ActiveSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(userID, doc)
	return doc, nil
}
