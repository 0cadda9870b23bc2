package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	therapistRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/utils"
)

// TherapistHandler serves therapist directory and availability-rule
// management endpoints.
type TherapistHandler struct {
	Repo therapistRepo.TherapistRepository
}

func NewTherapistHandler(repo therapistRepo.TherapistRepository) *TherapistHandler {
	return &TherapistHandler{Repo: repo}
}

func (h *TherapistHandler) ListTherapists(c *gin.Context) {
	therapists, err := h.Repo.List(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list therapists", err.Error())
		return
	}
	c.JSON(http.StatusOK, therapists)
}

func (h *TherapistHandler) GetTherapist(c *gin.Context) {
	therapist, err := h.Repo.GetByID(c.Request.Context(), c.Param("therapistID"))
	if err != nil {
		if errors.Is(err, therapistRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "therapist not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch therapist", err.Error())
		return
	}
	c.JSON(http.StatusOK, therapist)
}

// UpdateAvailability replaces a therapist's availability rules. Existing
// bookings are untouched; new availability only governs future slot
// generation.
func (h *TherapistHandler) UpdateAvailability(c *gin.Context) {
	therapistID := c.Param("therapistID")

	var availability models.TherapistAvailability
	if err := c.ShouldBindJSON(&availability); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if availability.WorkingHours.Start < 0 || availability.WorkingHours.End > 24*60 ||
		availability.WorkingHours.Start >= availability.WorkingHours.End {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "workingHours must be a non-empty window within the day")
		return
	}
	for _, br := range availability.Breaks {
		if br.Start >= br.End {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "break windows must be non-empty")
			return
		}
	}

	if err := h.Repo.UpdateAvailability(c.Request.Context(), therapistID, availability); err != nil {
		if errors.Is(err, therapistRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "therapist not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update availability", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "availability updated"})
}
