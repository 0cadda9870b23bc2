package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/luisperes28-droid/desperto-app-sub001/services/scheduling"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// AvailabilityHandler serves the slot query.
type AvailabilityHandler struct {
	Engine scheduling.SchedulingEngine
}

func NewAvailabilityHandler(engine scheduling.SchedulingEngine) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine}
}

// ListSlots answers "what times can this client book with this therapist
// on this date". The result is also cached under a short-lived session id
// so the commit step can reference what was shown; the commit re-validates
// regardless, the cache is purely informational.
func (h *AvailabilityHandler) ListSlots(c *gin.Context) {
	therapistID := c.Param("therapistID")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "missing date query parameter")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date must be YYYY-MM-DD")
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration", strconv.Itoa(scheduling.DefaultSessionMinutes)))
	if err != nil || duration <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "duration must be a positive number of minutes")
		return
	}
	clientEmail := c.Query("client")

	result, err := h.Engine.ListAvailableSlots(c.Request.Context(), date, therapistID, duration, clientEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	sessionID := uuid.New().String()
	if data, err := json.Marshal(result); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := utils.GetCacheClient().Set(ctx, utils.SlotSessionPrefix+sessionID, data, utils.SlotSessionTTL).Err(); err != nil {
			utils.GetLogger().Warn("failed to cache slot session")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionID": sessionID,
		"result":    result,
	})
}
