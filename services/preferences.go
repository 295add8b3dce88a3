package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda-widget/config"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceStore — плоское хранилище строковых ключей с примитивными значениями.
// Записи по разным ключам не атомарны относительно читателей.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	PutAll(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}

// NewPreferenceStore выбирает бэкенд по STORE_BACKEND. db нужен только для sqlite/postgres.
func NewPreferenceStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (PreferenceStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return NewMemoryPreferences(), nil
	case "sqlite", "postgres":
		if db == nil {
			return nil, fmt.Errorf("store %q needs a database connection", cfg.StoreBackend)
		}
		return NewGormPreferences(db)
	case "redis":
		return NewRedisPreferences(ctx, cfg.RedisAddr, "agenda-widget:preferences")
	default:
		return nil, fmt.Errorf("%w: store %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}

// MemoryPreferences живёт в памяти процесса, записи не истекают.
type MemoryPreferences struct {
	cache *cache.Cache
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryPreferences) Get(_ context.Context, key string) (string, bool, error) {
	value, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}
	str, ok := value.(string)
	return str, ok, nil
}

func (s *MemoryPreferences) PutAll(_ context.Context, values map[string]string) error {
	for key, value := range values {
		s.cache.Set(key, value, cache.NoExpiration)
	}
	return nil
}

func (s *MemoryPreferences) Clear(context.Context) error {
	s.cache.Flush()
	return nil
}

// Preference — строка таблицы widget_preferences.
type Preference struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Preference) TableName() string { return "widget_preferences" }

type GormPreferences struct {
	db *gorm.DB
}

func NewGormPreferences(db *gorm.DB) (*GormPreferences, error) {
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate preferences: %w", err)
	}
	return &GormPreferences{db: db}, nil
}

func (s *GormPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	var pref Preference
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return pref.Value, true, nil
}

func (s *GormPreferences) PutAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]Preference, 0, len(values))
	for key, value := range values {
		rows = append(rows, Preference{Key: key, Value: value, UpdatedAt: now})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

func (s *GormPreferences) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Preference{}).Error
}

// RedisPreferences хранит все ключи в одном hash.
type RedisPreferences struct {
	client  *redis.Client
	hashKey string
}

func NewRedisPreferences(ctx context.Context, addr, hashKey string) (*RedisPreferences, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisPreferences{client: client, hashKey: hashKey}, nil
}

func (s *RedisPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.hashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisPreferences) PutAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(values))
	for key, value := range values {
		fields[key] = value
	}
	return s.client.HSet(ctx, s.hashKey, fields).Err()
}

func (s *RedisPreferences) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.hashKey).Err()
}
