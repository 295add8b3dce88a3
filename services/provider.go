package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"
)

// WidgetLifecycle — колбэки, которые вызывает хост виджетов.
type WidgetLifecycle interface {
	OnRefreshRequested(ctx context.Context)
	OnFirstInstanceAdded(ctx context.Context)
	OnLastInstanceRemoved(ctx context.Context)
}

// WidgetHost принимает отрисованные виды.
type WidgetHost interface {
	Instances() []models.WidgetInstance
	// UpdateWidget возвращает false, если вид устарел или экземпляр удалён.
	UpdateWidget(view models.WidgetView) bool
}

// WidgetProvider — единственная реализация виджета поверх сменного DataSource.
type WidgetProvider struct {
	source   DataSource
	host     WidgetHost
	location *time.Location
	now      func() time.Time

	seq atomic.Uint64
	wg  sync.WaitGroup
}

func NewWidgetProvider(source DataSource, host WidgetHost, location *time.Location) *WidgetProvider {
	if location == nil {
		location = time.Local
	}
	return &WidgetProvider{
		source:   source,
		host:     host,
		location: location,
		now:      time.Now,
	}
}

// SetClock подменяет часы; нужен тестам.
func (p *WidgetProvider) SetClock(now func() time.Time) {
	p.now = now
}

func (p *WidgetProvider) SourceName() string {
	return p.source.Name()
}

// OnRefreshRequested запускает независимый проход отрисовки для каждого экземпляра
// и сразу возвращается. Отмены нет: результат, пришедший позже, применяется,
// только если он не старше уже показанного.
func (p *WidgetProvider) OnRefreshRequested(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, instance := range p.host.Instances() {
		p.wg.Add(1)
		go func(instance models.WidgetInstance) {
			defer p.wg.Done()
			p.Render(ctx, instance)
		}(instance)
	}
}

func (p *WidgetProvider) OnFirstInstanceAdded(ctx context.Context) {
	logger.Infof("widget provider: first instance added, source=%s", p.source.Name())
}

func (p *WidgetProvider) OnLastInstanceRemoved(ctx context.Context) {
	logger.Infof("widget provider: last instance removed")
}

// Render синхронно собирает вид одного экземпляра и передаёт его хосту.
func (p *WidgetProvider) Render(ctx context.Context, instance models.WidgetInstance) models.WidgetView {
	seq := p.seq.Add(1)
	now := p.now().In(p.location)

	view := p.source.Compose(ctx, instance, now)
	view.InstanceID = instance.ID
	view.Sequence = seq
	view.Source = p.source.Name()

	if !p.host.UpdateWidget(view) {
		logger.Debugf("widget provider: view %d for instance %d dropped", seq, instance.ID)
	}
	return view
}

// Wait ждёт завершения всех запущенных проходов.
func (p *WidgetProvider) Wait() {
	p.wg.Wait()
}
