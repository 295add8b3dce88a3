package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"
)

// WidgetRegistry — хост виджетов внутри процесса: экземпляры, последние виды и подписчики.
type WidgetRegistry struct {
	mu        sync.RWMutex
	instances map[int]models.WidgetInstance
	views     map[int]models.WidgetView
	subs      map[int]map[chan models.WidgetView]struct{}
	lifecycle WidgetLifecycle
}

func NewWidgetRegistry() *WidgetRegistry {
	return &WidgetRegistry{
		instances: make(map[int]models.WidgetInstance),
		views:     make(map[int]models.WidgetView),
		subs:      make(map[int]map[chan models.WidgetView]struct{}),
	}
}

// Bind задаёт получателя колбэков жизненного цикла.
func (r *WidgetRegistry) Bind(lifecycle WidgetLifecycle) {
	r.mu.Lock()
	r.lifecycle = lifecycle
	r.mu.Unlock()
}

// Add регистрирует экземпляр. Повторное добавление обновляет владельца.
func (r *WidgetRegistry) Add(ctx context.Context, instance models.WidgetInstance) bool {
	r.mu.Lock()
	existing, exists := r.instances[instance.ID]
	if exists {
		existing.UserID = instance.UserID
		r.instances[instance.ID] = existing
		r.mu.Unlock()
		return false
	}
	if instance.AddedAt.IsZero() {
		instance.AddedAt = time.Now()
	}
	r.instances[instance.ID] = instance
	first := len(r.instances) == 1
	lifecycle := r.lifecycle
	r.mu.Unlock()

	if first && lifecycle != nil {
		lifecycle.OnFirstInstanceAdded(ctx)
	}
	return true
}

func (r *WidgetRegistry) Remove(ctx context.Context, id int) bool {
	r.mu.Lock()
	if _, exists := r.instances[id]; !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.instances, id)
	delete(r.views, id)
	for ch := range r.subs[id] {
		close(ch)
	}
	delete(r.subs, id)
	last := len(r.instances) == 0
	lifecycle := r.lifecycle
	r.mu.Unlock()

	if last && lifecycle != nil {
		lifecycle.OnLastInstanceRemoved(ctx)
	}
	return true
}

func (r *WidgetRegistry) Instances() []models.WidgetInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.WidgetInstance, 0, len(r.instances))
	for _, instance := range r.instances {
		out = append(out, instance)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *WidgetRegistry) Instance(id int) (models.WidgetInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[id]
	return instance, ok
}

func (r *WidgetRegistry) View(id int) (models.WidgetView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	view, ok := r.views[id]
	return view, ok
}

// UpdateWidget принимает вид, если экземпляр жив и вид не старше показанного.
func (r *WidgetRegistry) UpdateWidget(view models.WidgetView) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[view.InstanceID]; !exists {
		return false
	}
	if current, ok := r.views[view.InstanceID]; ok && current.Sequence > view.Sequence {
		return false
	}
	r.views[view.InstanceID] = view

	for ch := range r.subs[view.InstanceID] {
		select {
		case ch <- view:
		default:
			// медленный подписчик пропускает промежуточный вид
		}
	}
	return true
}

// Subscribe возвращает канал новых видов экземпляра. Канал закрывается при удалении экземпляра.
func (r *WidgetRegistry) Subscribe(id int) (<-chan models.WidgetView, func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[id]; !exists {
		return nil, nil, false
	}
	ch := make(chan models.WidgetView, 4)
	if r.subs[id] == nil {
		r.subs[id] = make(map[chan models.WidgetView]struct{})
	}
	r.subs[id][ch] = struct{}{}

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs[id][ch]; ok {
			delete(r.subs[id], ch)
			close(ch)
		}
	}
	return ch, cancel, true
}

// RunTimer — периодический таймер хоста; блокируется до отмены ctx.
func (r *WidgetRegistry) RunTimer(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.RLock()
			lifecycle, count := r.lifecycle, len(r.instances)
			r.mu.RUnlock()
			if lifecycle != nil && count > 0 {
				logger.Debugf("widget registry: periodic refresh of %d instances", count)
				lifecycle.OnRefreshRequested(ctx)
			}
		}
	}
}
