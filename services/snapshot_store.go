package services

import (
	"context"
	"strconv"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"
)

// SnapshotStore хранит единственный снимок виджета поверх PreferenceStore.
// Save всегда перезаписывает все поля; слияния по полям нет.
// lastUpdate хранится в миллисекундах Unix и читается обратно в UTC.
type SnapshotStore struct {
	prefs  PreferenceStore
	prefix string
}

func NewSnapshotStore(prefs PreferenceStore, prefix string) *SnapshotStore {
	return &SnapshotStore{prefs: prefs, prefix: prefix}
}

// Load никогда не возвращает ошибку: отсутствующие или битые поля получают значения по умолчанию.
func (s *SnapshotStore) Load(ctx context.Context) models.WidgetSnapshot {
	snap := models.DefaultSnapshot()

	if v, ok := s.get(ctx, models.KeyEventsToday); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			snap.EventsToday = n
		} else {
			logger.Warnf("snapshot store: malformed %s=%q, using 0", models.KeyEventsToday, v)
		}
	}
	if v, ok := s.get(ctx, models.KeyNextEventTitle); ok {
		snap.NextEventTitle = v
	}
	if v, ok := s.get(ctx, models.KeyNextEventTime); ok {
		snap.NextEventTime = v
	}
	if v, ok := s.get(ctx, models.KeyScheduleStatus); ok {
		snap.ScheduleStatus = v
	}
	if v, ok := s.get(ctx, models.KeyCurrentSubject); ok {
		snap.CurrentSubject = v
	}
	if v, ok := s.get(ctx, models.KeyLastUpdate); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			snap.LastUpdate = time.UnixMilli(ms).UTC()
		}
	}
	return snap
}

// ForUser возвращает хранилище снимка отдельного пользователя поверх тех же предпочтений.
// Снимок установки, который пишет приложение, им не затрагивается.
func (s *SnapshotStore) ForUser(userID string) *SnapshotStore {
	return &SnapshotStore{prefs: s.prefs, prefix: s.prefix + "users." + userID + "."}
}

func (s *SnapshotStore) Save(ctx context.Context, snap models.WidgetSnapshot) error {
	var lastUpdate int64
	if !snap.LastUpdate.IsZero() {
		lastUpdate = snap.LastUpdate.UnixMilli()
	}
	return s.prefs.PutAll(ctx, map[string]string{
		s.prefix + models.KeyEventsToday:    strconv.Itoa(snap.EventsToday),
		s.prefix + models.KeyNextEventTitle: snap.NextEventTitle,
		s.prefix + models.KeyNextEventTime:  snap.NextEventTime,
		s.prefix + models.KeyScheduleStatus: snap.ScheduleStatus,
		s.prefix + models.KeyCurrentSubject: snap.CurrentSubject,
		s.prefix + models.KeyLastUpdate:     strconv.FormatInt(lastUpdate, 10),
	})
}

func (s *SnapshotStore) get(ctx context.Context, key string) (string, bool) {
	value, found, err := s.prefs.Get(ctx, s.prefix+key)
	if err != nil {
		logger.Warnf("snapshot store: failed to read %s: %v", key, err)
		return "", false
	}
	return value, found
}
