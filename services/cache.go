package services

import (
	"time"

	"agenda-widget/models"

	"github.com/patrickmn/go-cache"
)

// ScheduleCache держит документы расписания по пользователю. События не кэшируются.
type ScheduleCache struct {
	cache *cache.Cache
}

func NewScheduleCache(defaultExpiration, cleanupInterval time.Duration) *ScheduleCache {
	return &ScheduleCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

func scheduleKey(userID string) string {
	return "schedule:" + userID
}

func (s *ScheduleCache) Get(userID string) (*models.ScheduleDocument, bool) {
	cached, found := s.cache.Get(scheduleKey(userID))
	if !found {
		return nil, false
	}
	doc, ok := cached.(*models.ScheduleDocument)
	return doc, ok
}

func (s *ScheduleCache) Set(userID string, doc *models.ScheduleDocument) {
	s.cache.Set(scheduleKey(userID), doc, cache.DefaultExpiration)
}

func (s *ScheduleCache) Invalidate(userID string) {
	s.cache.Delete(scheduleKey(userID))
}

func (s *ScheduleCache) Flush() {
	s.cache.Flush()
}

func (s *ScheduleCache) Len() int {
	return s.cache.ItemCount()
}
