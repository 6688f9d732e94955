package handlers

import (
	"errors"
	"net/http"
	"strings"

	"irrigation_node/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errGetStatus       = "failed to load node status"
	errQueueFull       = "command queue full, retry later"
	errSubmitCommand   = "failed to submit command"
	errInvalidBodyPref = "invalid body: "
	errLineHasNewline  = "line must not contain line breaks"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

type commandRequest struct {
	Line string `json:"line" binding:"required"`
}

// SubmitCommandRequest is an exported model for Swagger docs of the command payload.
type SubmitCommandRequest struct {
	// One command line without the terminating newline.
	Line string `json:"line" example:"{\"water_duration\": 30, \"fan\": \"on\"}"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get node status
// @Description  Pump state and remaining seconds, transmit gate, fan and light, last telemetry record, counters.
// @Tags         node
// @Produce      json
// @Success      200  {object}  models.NodeStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/node/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "node_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Inject a command line
// @Description  The line is queued for the command consumer and handled exactly like one received on the serial link.
// @Tags         node
// @Accept       json
// @Produce      json
// @Param        body  body   SubmitCommandRequest  true  "Command line"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/node/commands [post]
// @Security     BearerAuth
func (h *Handler) submitCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	line := strings.TrimRight(req.Line, "\r\n")
	if strings.ContainsAny(line, "\r\n") {
		c.JSON(http.StatusBadRequest, gin.H{"error": errLineHasNewline})
		return
	}
	if err := h.services.Commands.Submit(line); err != nil {
		if errors.Is(err, service.ErrCommandQueueFull) {
			h.logAndJSONError(c, http.StatusServiceUnavailable, errQueueFull, "command_queue_full", err)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSubmitCommand, "command_submit_failed", err)
		return
	}
	if h.log != nil {
		h.log.Infow("command_injected", "line", line, "operator_id", c.GetInt(ctxOperatorID))
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}
