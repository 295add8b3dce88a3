package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"agenda-widget/logger"
	"agenda-widget/models"
)

// Команды моста приложения.
const (
	MethodInitialize              = "initialize"
	MethodUpdateWidget            = "updateWidget"
	MethodSchedulePeriodicUpdates = "schedulePeriodicUpdates"
	MethodClearWidget             = "clearWidget"
	MethodIsSupported             = "isSupported"
	MethodGetWidgetInfo           = "getWidgetInfo"
)

const (
	WidgetName    = "Horario Widget"
	WidgetVersion = "1.0"
)

// Bridge обрабатывает команды приложения. Каждый вызов независим;
// ошибки и паники возвращаются как BridgeResult и наружу не уходят.
type Bridge struct {
	store     *SnapshotStore
	lifecycle WidgetLifecycle
	now       func() time.Time
}

func NewBridge(store *SnapshotStore, lifecycle WidgetLifecycle) *Bridge {
	return &Bridge{store: store, lifecycle: lifecycle, now: time.Now}
}

func (b *Bridge) Call(ctx context.Context, method string, args interface{}) (result models.BridgeResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("bridge: %s panicked: %v", method, r)
			result = models.Err(models.CodeInternalError, fmt.Sprintf("%s failed", method))
			result.Details = fmt.Sprint(r)
		}
	}()

	switch method {
	case MethodInitialize:
		return models.Ok("Widget inicializado")
	case MethodUpdateWidget:
		return b.updateWidget(ctx, args)
	case MethodSchedulePeriodicUpdates:
		// планирование делает хост; команда только подтверждается
		return models.Ok("Actualizaciones programadas")
	case MethodClearWidget:
		return b.clearWidget(ctx)
	case MethodIsSupported:
		return models.Ok(true)
	case MethodGetWidgetInfo:
		return models.Ok(map[string]interface{}{
			"available": true,
			"name":      WidgetName,
			"version":   WidgetVersion,
		})
	default:
		return models.Err(models.CodeNotImplemented, fmt.Sprintf("method %q is not implemented", method))
	}
}

func (b *Bridge) updateWidget(ctx context.Context, args interface{}) models.BridgeResult {
	data, ok := args.(map[string]interface{})
	if !ok || data == nil {
		return models.Err(models.CodeNoData, "No se recibieron datos")
	}

	snap := SnapshotFromArgs(data, b.now())
	if err := b.store.Save(ctx, snap); err != nil {
		logger.Errorf("bridge: failed to save snapshot: %v", err)
		result := models.Err(models.CodeUpdateError, "Error actualizando widget")
		result.Details = err.Error()
		return result
	}
	b.lifecycle.OnRefreshRequested(ctx)
	return models.Ok("Widget actualizado")
}

func (b *Bridge) clearWidget(ctx context.Context) models.BridgeResult {
	snap := models.WidgetSnapshot{
		ScheduleStatus: models.DefaultScheduleStatus,
		LastUpdate:     b.now(),
	}
	if err := b.store.Save(ctx, snap); err != nil {
		logger.Errorf("bridge: failed to clear snapshot: %v", err)
		result := models.Err(models.CodeClearError, "Error limpiando widget")
		result.Details = err.Error()
		return result
	}
	b.lifecycle.OnRefreshRequested(ctx)
	return models.Ok("Widget limpiado")
}

// SnapshotFromArgs собирает полный снимок из карты аргументов.
// Отсутствующие и неверно типизированные поля получают значения по умолчанию.
func SnapshotFromArgs(args map[string]interface{}, now time.Time) models.WidgetSnapshot {
	snap := models.WidgetSnapshot{
		EventsToday:    intArg(args[models.KeyEventsToday]),
		NextEventTitle: stringArg(args[models.KeyNextEventTitle]),
		NextEventTime:  stringArg(args[models.KeyNextEventTime]),
		ScheduleStatus: stringArg(args[models.KeyScheduleStatus]),
		CurrentSubject: stringArg(args[models.KeyCurrentSubject]),
		LastUpdate:     timeArg(args[models.KeyLastUpdate]),
	}
	if snap.ScheduleStatus == "" {
		snap.ScheduleStatus = models.DefaultScheduleStatus
	}
	if snap.LastUpdate.IsZero() {
		snap.LastUpdate = now
	}
	return snap
}

func stringArg(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case fmt.Stringer:
		return s.String()
	case float64, int, int64, bool:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

func intArg(v interface{}) int {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		n = int64(x)
	case json.Number:
		parsed, err := x.Int64()
		if err != nil {
			return 0
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

// timeArg принимает миллисекунды эпохи или RFC 3339.
func timeArg(v interface{}) time.Time {
	switch x := v.(type) {
	case float64:
		if x > 0 {
			return time.UnixMilli(int64(x))
		}
	case int64:
		if x > 0 {
			return time.UnixMilli(x)
		}
	case int:
		if x > 0 {
			return time.UnixMilli(int64(x))
		}
	case json.Number:
		if ms, err := x.Int64(); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t
		}
	}
	return time.Time{}
}
