package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/service"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
	"github.com/lockin-app/lockin-api/pkg/response"
)

// ScheduleHandler exposes the parse, clarify and optimize endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	optimizer *service.OptimizerService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedules *service.ScheduleService, optimizer *service.OptimizerService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, optimizer: optimizer}
}

// Parse godoc
// @Summary Parse free text into a schedule
// @Description Extract meetings and tasks from a natural language description and list the clarifying questions that remain
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ParseScheduleRequest true "Free text schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /schedule/parse [post]
func (h *ScheduleHandler) Parse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ParseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid parse payload"))
		return
	}

	res, err := h.schedules.Parse(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Get godoc
// @Summary Current schedule
// @Description Return the confirmed schedule, falling back to the working copy
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.schedules.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Store godoc
// @Summary Replace the schedule wholesale
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.StoreScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Store(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.StoreScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid store payload"))
		return
	}

	res, err := h.schedules.Store(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Answer godoc
// @Summary Answer a clarifying question
// @Description Apply one answer and return the remaining questions
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.AnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/answer [post]
func (h *ScheduleHandler) Answer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	res, err := h.schedules.Answer(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Reset godoc
// @Summary Clear the schedule state
// @Tags Schedule
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /schedule/reset [post]
func (h *ScheduleHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.schedules.Reset(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	if h.optimizer != nil {
		h.optimizer.Invalidate(c.Request.Context(), claims.UserID)
	}

	response.NoContent(c)
}

// Optimize godoc
// @Summary Optimize the confirmed schedule
// @Description Ask the optimizer model to lay the schedule out into concrete time slots
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *ScheduleHandler) Optimize(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.optimizer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "optimizer is not configured"))
		return
	}

	res, err := h.optimizer.Optimize(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
