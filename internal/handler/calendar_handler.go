package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/service"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
	"github.com/lockin-app/lockin-api/pkg/response"
)

// CalendarHandler exposes Google Calendar integration endpoints.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// AuthorizeURL godoc
// @Summary Google OAuth consent URL
// @Tags Calendar
// @Produce json
// @Param redirect_uri query string true "OAuth redirect URI"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/google/authorize [get]
func (h *CalendarHandler) AuthorizeURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.AuthorizeURL(c.Query("redirect_uri"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Callback godoc
// @Summary Complete the OAuth flow
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.OAuthCallbackRequest true "OAuth callback payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/google/callback [post]
func (h *CalendarHandler) Callback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid callback payload"))
		return
	}

	tokens, err := h.service.ExchangeCode(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tokens, nil)
}

// Import godoc
// @Summary Import upcoming calendar events
// @Description Pull events from the primary Google calendar so the optimizer can plan around them
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.ImportCalendarRequest true "Import payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/google/import [post]
func (h *CalendarHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ImportCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	res, err := h.service.Import(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Export godoc
// @Summary Export the confirmed schedule to Google Calendar
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.ExportCalendarRequest true "Export payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/google/export [post]
func (h *CalendarHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ExportCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	res, err := h.service.Export(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
