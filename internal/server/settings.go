package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
)

func (s *Server) GetRentSettings(c *gin.Context) {
	settings, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

type updateRentSettingsRequest struct {
	AutoGenerateRent  bool `json:"auto_generate_rent"`
	RentGenerationDay int  `json:"rent_generation_day" binding:"required"`
	RentDueDays       int  `json:"rent_due_days"`
}

func (s *Server) UpdateRentSettings(c *gin.Context) {
	var req updateRentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	settings, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.RentSettings{
		AutoGenerateRent:  req.AutoGenerateRent,
		RentGenerationDay: req.RentGenerationDay,
		RentDueDays:       req.RentDueDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}
