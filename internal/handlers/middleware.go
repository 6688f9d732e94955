package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxOperatorID = "operatorId"

func (h *Handler) operatorMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	operatorID, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxOperatorID, operatorID)
	c.Next()
}

// wsAuthMiddleware also accepts the token as ?access_token= because browsers
// cannot set headers on a WebSocket handshake.
func (h *Handler) wsAuthMiddleware(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		if tok := c.Query("access_token"); tok != "" {
			c.Request.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	h.operatorMiddleware(c)
}
