package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"
)

// MinIORemote хранит документы как JSON:
//
//	users/<uid>/horarios/<id>.json
//	users/<uid>/eventos/<yyyy-mm-dd>.json  (массив событий за день)
type MinIORemote struct {
	objects ObjectStore
}

// ObjectStore — то, что MinIORemote использует из MinIOService.
type ObjectStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GetJSON(ctx context.Context, objectPath string, v interface{}) (bool, error)
	PutJSON(ctx context.Context, objectPath string, v interface{}) error
}

func NewMinIORemote(objects ObjectStore) *MinIORemote {
	return &MinIORemote{objects: objects}
}

func schedulesPrefix(userID string) string {
	return fmt.Sprintf("users/%s/horarios/", userID)
}

func SchedulePath(userID, scheduleID string) string {
	return fmt.Sprintf("users/%s/horarios/%s.json", userID, scheduleID)
}

func EventsPath(userID string, day time.Time) string {
	return fmt.Sprintf("users/%s/eventos/%s.json", userID, day.Format("2006-01-02"))
}

func (r *MinIORemote) ActiveSchedule(ctx context.Context, userID string) (*models.ScheduleDocument, error) {
	docs, err := r.schedules(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.Active {
			return doc, nil
		}
	}
	return nil, ErrNoActiveSchedule
}

func (r *MinIORemote) schedules(ctx context.Context, userID string) ([]*models.ScheduleDocument, error) {
	keys, err := r.objects.ListKeys(ctx, schedulesPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: list schedules: %w", ErrRemoteQuery, err)
	}
	sort.Strings(keys)

	docs := make([]*models.ScheduleDocument, 0, len(keys))
	for _, key := range keys {
		var doc models.ScheduleDocument
		found, err := r.objects.GetJSON(ctx, key, &doc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrRemoteQuery, key, err)
		}
		if found && doc.UserID == userID {
			docs = append(docs, &doc)
		}
	}
	return docs, nil
}

// SaveSchedule сохраняет документ; если он активен, остальные документы пользователя деактивируются.
func (r *MinIORemote) SaveSchedule(ctx context.Context, doc *models.ScheduleDocument) (string, error) {
	if doc.Active {
		existing, err := r.schedules(ctx, doc.UserID)
		if err != nil {
			return "", err
		}
		for _, other := range existing {
			if other.ID == doc.ID || !other.Active {
				continue
			}
			other.Active = false
			if err := r.objects.PutJSON(ctx, SchedulePath(other.UserID, other.ID), other); err != nil {
				return "", err
			}
			logger.Infof("minio remote: deactivated schedule %s of %s", other.ID, other.UserID)
		}
	}

	path := SchedulePath(doc.UserID, doc.ID)
	return path, r.objects.PutJSON(ctx, path, doc)
}

func (r *MinIORemote) EventsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	var events []models.Event

	y, m, d := from.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, from.Location()); day.Before(to); day = day.AddDate(0, 0, 1) {
		var daily []models.Event
		found, err := r.objects.GetJSON(ctx, EventsPath(userID, day), &daily)
		if err != nil {
			return nil, fmt.Errorf("%w: events: %w", ErrRemoteQuery, err)
		}
		if !found {
			continue
		}
		for _, event := range daily {
			if event.OwnerID == userID && !event.At.Before(from) && event.At.Before(to) {
				events = append(events, event)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events, nil
}
