package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settingsapp "chakavak/internal/core/settings/service"
)

type SettingsController struct{ sc SettingsUseCase }

func NewSettingsController(sc SettingsUseCase) *SettingsController {
	return &SettingsController{sc: sc}
}

func (ctl *SettingsController) GetSettings(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	res, err := ctl.sc.Get(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch settings"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *SettingsController) UpdateSettings(c *gin.Context) {
	var req struct {
		AutoPostEnabled     *bool   `json:"auto_post_enabled"`
		PostIntervalMinutes *int    `json:"post_interval_minutes"`
		MaxPostsPerDay      *int    `json:"max_posts_per_day"`
		DailyPostTime       *string `json:"daily_post_time"`
		Timezone            *string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	res, err := ctl.sc.Update(c.Request.Context(), userID.(string), settingsapp.UpdateInput{
		AutoPostEnabled:     req.AutoPostEnabled,
		PostIntervalMinutes: req.PostIntervalMinutes,
		MaxPostsPerDay:      req.MaxPostsPerDay,
		DailyPostTime:       req.DailyPostTime,
		Timezone:            req.Timezone,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
