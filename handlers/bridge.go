package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"agenda-widget/models"
	"agenda-widget/services"

	"github.com/gin-gonic/gin"
)

type BridgeHandler struct {
	bridge *services.Bridge
}

func NewBridgeHandler(bridge *services.Bridge) *BridgeHandler {
	return &BridgeHandler{bridge: bridge}
}

// Call выполняет команду моста: POST /bridge/:method, тело — аргументы команды (необязательно).
func (h *BridgeHandler) Call(c *gin.Context) {
	method := c.Param("method")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	var args interface{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	result := h.bridge.Call(c.Request.Context(), method, args)
	c.JSON(bridgeStatus(result), result)
}

func bridgeStatus(result models.BridgeResult) int {
	switch {
	case result.OK:
		return http.StatusOK
	case result.Code == models.CodeNotImplemented:
		return http.StatusNotImplemented
	case result.Code == models.CodeNoData:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
