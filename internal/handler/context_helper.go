package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/middleware"
)

// actorID identifies the caller for logs and change notifications.
func actorID(c *gin.Context) string {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return ""
	}
	return claims.UserID
}
