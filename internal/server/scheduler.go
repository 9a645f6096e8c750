package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSchedulerStatus(c *gin.Context) {
	if s.scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"running": false}})
		return
	}

	status, err := s.scheduler.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
