package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

// ReferenceHandler serves cities, faculties and departments.
type ReferenceHandler struct {
	reference *usecase.ReferenceService
	logger    *zap.Logger
}

func NewReferenceHandler(reference *usecase.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceHandler{reference: reference, logger: logger}
}

// RegisterRoutes binds the public lookup routes.
func (h *ReferenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cities", h.cities)
	r.GET("/cities/:wilaya_code", h.citiesByWilaya)
	r.GET("/faculties", h.faculties)
	r.GET("/departments/:faculty_id", h.departments)
}

// RegisterAdminRoutes binds reference writes on an admin-guarded group.
func (h *ReferenceHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/faculties", h.createFaculty)
	r.POST("/departments", h.createDepartment)
}

// cities godoc
// @Summary List cities
// @Tags Reference
// @Produce json
// @Success 200 {array} domain.City
// @Router /api/data/cities [get]
func (h *ReferenceHandler) cities(c *gin.Context) {
	cities, err := h.reference.Cities(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// citiesByWilaya godoc
// @Summary List cities of a wilaya
// @Tags Reference
// @Produce json
// @Param wilaya_code path string true "Wilaya code"
// @Success 200 {array} domain.City
// @Failure 400 {object} ErrorResponse
// @Router /api/data/cities/{wilaya_code} [get]
func (h *ReferenceHandler) citiesByWilaya(c *gin.Context) {
	cities, err := h.reference.CitiesByWilaya(c.Request.Context(), strings.TrimSpace(c.Param("wilaya_code")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// faculties godoc
// @Summary List faculties
// @Tags Reference
// @Produce json
// @Success 200 {array} domain.Faculty
// @Router /api/data/faculties [get]
func (h *ReferenceHandler) faculties(c *gin.Context) {
	faculties, err := h.reference.Faculties(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, faculties)
}

// departments godoc
// @Summary List departments of a faculty
// @Tags Reference
// @Produce json
// @Param faculty_id path integer true "Faculty ID"
// @Success 200 {array} domain.Department
// @Failure 400 {object} ErrorResponse
// @Router /api/data/departments/{faculty_id} [get]
func (h *ReferenceHandler) departments(c *gin.Context) {
	facultyID, ok := pathID(c, "faculty_id")
	if !ok {
		return
	}
	departments, err := h.reference.DepartmentsByFaculty(c.Request.Context(), facultyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// createFaculty godoc
// @Summary Create a faculty
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FacultyRequest true "Request body"
// @Success 201 {object} domain.Faculty
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/faculties [post]
func (h *ReferenceHandler) createFaculty(c *gin.Context) {
	var req FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid faculty payload")
		return
	}
	faculty, err := h.reference.CreateFaculty(c.Request.Context(), req.FacultyName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, faculty)
}

// createDepartment godoc
// @Summary Create a department
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DepartmentRequest true "Request body"
// @Success 201 {object} domain.Department
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/departments [post]
func (h *ReferenceHandler) createDepartment(c *gin.Context) {
	var req DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid department payload")
		return
	}
	department, err := h.reference.CreateDepartment(c.Request.Context(), req.DepartmentName, req.FacultyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, department)
}
