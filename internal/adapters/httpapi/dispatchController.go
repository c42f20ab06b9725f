package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DispatchController struct{ dc DispatchUseCase }

func NewDispatchController(dc DispatchUseCase) *DispatchController {
	return &DispatchController{dc: dc}
}

// RunDispatch اجرای یک cycle کامل و برگرداندن خلاصه به caller بیرونی
func (ctl *DispatchController) RunDispatch(c *gin.Context) {
	summary, err := ctl.dc.RunCycle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": summary.Processed,
		"posted":    summary.Posted,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"retried":   summary.Retried,
		"results":   summary.Outcomes,
	})
}
