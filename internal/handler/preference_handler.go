package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/service"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
	"github.com/lockin-app/lockin-api/pkg/response"
)

// PreferenceHandler exposes the onboarding questionnaire endpoints.
type PreferenceHandler struct {
	service   *service.PreferenceService
	optimizer *service.OptimizerService
}

// NewPreferenceHandler constructs handler.
func NewPreferenceHandler(svc *service.PreferenceService, optimizer *service.OptimizerService) *PreferenceHandler {
	return &PreferenceHandler{service: svc, optimizer: optimizer}
}

// Get godoc
// @Summary Stored scheduling preferences
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Update godoc
// @Summary Store scheduling preferences
// @Description Save the questionnaire answers and invalidate cached optimizations
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePreferencesRequest true "Preferences payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preferences payload"))
		return
	}

	res, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.optimizer != nil {
		h.optimizer.Invalidate(c.Request.Context(), claims.UserID)
	}

	response.JSON(c, http.StatusOK, res, nil)
}
