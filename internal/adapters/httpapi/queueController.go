package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type QueueController struct{ qc QueueUseCase }

func NewQueueController(qc QueueUseCase) *QueueController { return &QueueController{qc: qc} }

func (ctl *QueueController) CreateTweet(c *gin.Context) {
	var req struct {
		Content     string `json:"content" binding:"required"`
		MediaURL    string `json:"media_url"`
		ScheduledAt string `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	res, err := ctl.qc.Enqueue(c.Request.Context(), userID.(string), req.Content, req.MediaURL, scheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *QueueController) CreateBulkTweets(c *gin.Context) {
	var req struct {
		Tweets []string `json:"tweets" binding:"required"`
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
	count, err := ctl.qc.EnqueueBulk(c.Request.Context(), userID.(string), req.Tweets)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "count": count})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "count": count})
}

func (ctl *QueueController) ListTweets(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	res, err := ctl.qc.List(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tweets"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *QueueController) UpdateTweet(c *gin.Context) {
	var req struct {
		Content     *string `json:"content"`
		MediaURL    *string `json:"media_url"`
		ScheduledAt *string `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var scheduledAt *time.Time
	if req.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
			return
		}
		scheduledAt = &t
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	if err := ctl.qc.Update(c.Request.Context(), userID.(string), c.Param("id"), req.Content, req.MediaURL, scheduledAt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *QueueController) DeleteTweet(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	if err := ctl.qc.Delete(c.Request.Context(), userID.(string), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
