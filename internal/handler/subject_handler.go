package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/response"
	"github.com/stemsi/feedesk-backend/internal/service"
	"github.com/stemsi/feedesk-backend/internal/validator"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
	log            zerolog.Logger
}

func NewSubjectHandler(subjectService *service.SubjectService, log zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		subjectService: subjectService,
		log:            log.With().Str("component", "subject_handler").Logger(),
	}
}

// GetAll godoc
// GET /api/v1/subjects
func (h *SubjectHandler) GetAll(c *gin.Context) {
	subjects, err := h.subjectService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Get godoc
// GET /api/v1/subjects/:subjectCode
func (h *SubjectHandler) Get(c *gin.Context) {
	sub, err := h.subjectService.GetByCode(c.Request.Context(), c.Param("subjectCode"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": sub})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.Create(c.Request.Context(), req.SubjectCode, req.SubjectName, req.SubjectFee)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, gin.H{"subject": sub}, "Subject added successfully")
}

// UpdateFee godoc
// PUT /api/v1/subjects/:subjectCode/fee
func (h *SubjectHandler) UpdateFee(c *gin.Context) {
	var req model.UpdateSubjectFeeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.UpdateFee(c.Request.Context(), c.Param("subjectCode"), req.Fee)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, gin.H{"subject": sub}, "Subject fee updated successfully")
}

// Delete godoc
// DELETE /api/v1/subjects/:subjectCode
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.subjectService.Delete(c.Request.Context(), c.Param("subjectCode")); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Subject deleted successfully"})
}
