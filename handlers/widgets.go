package handlers

import (
	"net/http"
	"strconv"
	"time"

	"agenda-widget/logger"
	"agenda-widget/middleware"
	"agenda-widget/models"
	"agenda-widget/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WidgetHandler struct {
	registry *services.WidgetRegistry
	provider *services.WidgetProvider
	upgrader websocket.Upgrader
}

func NewWidgetHandler(registry *services.WidgetRegistry, provider *services.WidgetProvider) *WidgetHandler {
	return &WidgetHandler{
		registry: registry,
		provider: provider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type addWidgetRequest struct {
	ID int `json:"id" binding:"required,min=1"`
}

// ListWidgets возвращает живые экземпляры виджета
func (h *WidgetHandler) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":   h.registry.Instances(),
		"source": h.provider.SourceName(),
	})
}

// AddWidget регистрирует экземпляр; владелец берётся из идентичности запроса.
func (h *WidgetHandler) AddWidget(c *gin.Context) {
	var req addWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	instance := models.WidgetInstance{ID: req.ID, UserID: middleware.UserID(c), AddedAt: time.Now()}
	created := h.registry.Add(c.Request.Context(), instance)
	instance, _ = h.registry.Instance(req.ID)
	view := h.provider.Render(c.Request.Context(), instance)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"data": instance,
		"view": view,
	})
}

func (h *WidgetHandler) RemoveWidget(c *gin.Context) {
	id, ok := widgetID(c)
	if !ok {
		return
	}
	if !h.registry.Remove(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "widget not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh — широковещательный запрос обновления; отрисовка идёт асинхронно.
func (h *WidgetHandler) Refresh(c *gin.Context) {
	h.provider.OnRefreshRequested(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{
		"message":   "refresh requested",
		"instances": len(h.registry.Instances()),
	})
}

// GetView возвращает последний отрисованный вид; если его ещё нет, рисует синхронно.
func (h *WidgetHandler) GetView(c *gin.Context) {
	id, ok := widgetID(c)
	if !ok {
		return
	}
	instance, exists := h.registry.Instance(id)
	if !exists {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "widget not found"})
		return
	}

	view, rendered := h.registry.View(id)
	if !rendered {
		view = h.provider.Render(c.Request.Context(), instance)
	}
	c.JSON(http.StatusOK, gin.H{
		"data":     view,
		"rendered": rendered,
	})
}

// Stream отправляет по websocket текущий вид и все последующие.
func (h *WidgetHandler) Stream(c *gin.Context) {
	id, ok := widgetID(c)
	if !ok {
		return
	}
	updates, cancel, exists := h.registry.Subscribe(id)
	if !exists {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "widget not found"})
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("widget stream: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// читаем только для обнаружения закрытия соединения клиентом
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if view, ok := h.registry.View(id); ok {
		if err := conn.WriteJSON(view); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case view, open := <-updates:
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "widget removed"))
				return
			}
			if err := conn.WriteJSON(view); err != nil {
				logger.Debugf("widget stream: write failed: %v", err)
				return
			}
		}
	}
}

func widgetID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "invalid widget id",
		})
		return 0, false
	}
	return id, true
}
