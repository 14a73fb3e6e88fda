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

// StudentHandler serves the student roster.
type StudentHandler struct {
	studentService *service.StudentService
	log            zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		log:            log.With().Str("component", "student_handler").Logger(),
	}
}

// ListStudents godoc
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetStudent godoc
// GET /api/v1/students/:sid
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentService.GetBySID(c.Request.Context(), c.Param("sid"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent godoc
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student := &model.Student{
		SID:          req.SID,
		StudentName:  req.Name,
		StudentGrade: req.Grade,
	}
	if err := h.studentService.Create(c.Request.Context(), student); err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, gin.H{"student": student}, "Student added successfully")
}

// DeleteStudent godoc
// DELETE /api/v1/students/:sid
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentService.Delete(c.Request.Context(), c.Param("sid")); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Student deleted successfully"})
}
