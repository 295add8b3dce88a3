package services

import (
	"context"
	"errors"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"

	"github.com/sirupsen/logrus"
)

const (
	SourceCached = "cached"
	SourceRemote = "remote"
)

// DataSource собирает вид виджета для одного экземпляра.
type DataSource interface {
	Name() string
	Compose(ctx context.Context, instance models.WidgetInstance, now time.Time) models.WidgetView
}

// CachedSource рисует снимок, который приложение положило в хранилище.
type CachedSource struct {
	store *SnapshotStore
}

func NewCachedSource(store *SnapshotStore) *CachedSource {
	return &CachedSource{store: store}
}

func (s *CachedSource) Name() string { return SourceCached }

func (s *CachedSource) Compose(ctx context.Context, _ models.WidgetInstance, now time.Time) models.WidgetView {
	return FormatSnapshot(now, s.store.Load(ctx))
}

// RemoteDataSource запрашивает расписание и события напрямую.
// Половины "расписание" и "события" деградируют независимо.
type RemoteDataSource struct {
	remote RemoteSource
	store  *SnapshotStore
}

func NewRemoteDataSource(remote RemoteSource, store *SnapshotStore) *RemoteDataSource {
	return &RemoteDataSource{remote: remote, store: store}
}

func (s *RemoteDataSource) Name() string { return SourceRemote }

func (s *RemoteDataSource) Compose(ctx context.Context, instance models.WidgetInstance, now time.Time) models.WidgetView {
	if instance.UserID == "" {
		return SignInView(now)
	}
	log := logger.WithFields(logrus.Fields{"instance": instance.ID, "user": instance.UserID})

	var (
		slots    []models.ScheduleSlot
		subjects map[string]models.Subject
	)
	doc, scheduleErr := s.remote.ActiveSchedule(ctx, instance.UserID)
	if scheduleErr == nil {
		var slotErrs []error
		slots, slotErrs = doc.ScheduleSlots()
		for _, err := range slotErrs {
			log.Warnf("skipping malformed slot: %v", err)
		}
		subjects = doc.Subjects
	}

	from, to := DayBounds(now)
	events, eventsErr := s.remote.EventsBetween(ctx, instance.UserID, from, to)

	view := Format(now, slots, subjects, events)

	switch {
	case scheduleErr == nil:
	case errors.Is(scheduleErr, ErrNoActiveSchedule):
		view.Classes = []models.ClassLine{}
		view.Status = TextNoSchedule
		view.ClassesText = TextNoSchedule
	default:
		log.Errorf("schedule query failed: %v", scheduleErr)
		view.Classes = []models.ClassLine{}
		view.CurrentSubject = ""
		view.Status = TextScheduleError
		view.ClassesText = TextScheduleError
	}

	if eventsErr != nil {
		log.Errorf("events query failed: %v", eventsErr)
		view.EventsText = TextEventsError
		view.NextEventTitle = ""
		view.NextEventTime = ""
		view.EventsToday = 0
		view.PendingEvents = 0
	}

	// В хранилище попадают только полностью загруженные данные, под ключами пользователя.
	if (scheduleErr == nil || errors.Is(scheduleErr, ErrNoActiveSchedule)) && eventsErr == nil {
		if err := s.store.ForUser(instance.UserID).Save(ctx, view.Snapshot(now)); err != nil {
			log.Warnf("failed to persist snapshot: %v", err)
		}
	}
	return view
}
