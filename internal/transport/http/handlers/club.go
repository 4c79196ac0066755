package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

func notFoundCase(entity string) ErrorCase {
	return ErrorCase{Err: domain.ErrNotFound, Status: http.StatusNotFound, Message: entity + " not found"}
}

// pathID parses the :id parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// listOptions reads limit and offset query parameters. Missing values fall back to repository defaults.
func listOptions(c *gin.Context) (port.ListOptions, bool) {
	var opts port.ListOptions
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "invalid limit")
			return opts, false
		}
		opts.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			badRequest(c, "invalid offset")
			return opts, false
		}
		opts.Offset = offset
	}
	return opts, true
}

func queryPtr[T ~string](c *gin.Context, key string) *T {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// EventHandler manages club events for admins.
type EventHandler struct {
	events *usecase.EventService
	logger *zap.Logger
}

func NewEventHandler(events *usecase.EventService, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{events: events, logger: logger}
}

// RegisterRoutes binds event routes on an admin-guarded group.
func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/events", h.list)
	r.POST("/events", h.create)
	r.GET("/events/:id", h.get)
	r.PUT("/events/:id", h.update)
	r.DELETE("/events/:id", h.delete)
	r.GET("/events/:id/registrations", h.registrations)
	r.POST("/events/:id/registrations", h.register)
	r.DELETE("/events/:id/registrations/:student_id", h.cancelRegistration)
}

// list godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param status query string false "upcoming, ongoing, completed or cancelled"
// @Param limit query integer false "Page size"
// @Param offset query integer false "Rows to skip"
// @Success 200 {array} EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/events [get]
func (h *EventHandler) list(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	events, err := h.events.List(c.Request.Context(), port.EventFilter{
		Status: queryPtr[domain.EventStatus](c, "status"),
	}, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(events, newEventResponse))
}

// create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EventRequest true "Request body"
// @Success 201 {object} EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/events [post]
func (h *EventHandler) create(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid event payload")
		return
	}
	event := req.toDomain()
	event.OrganizerID = &admin.ID

	created, err := h.events.Create(c.Request.Context(), event)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newEventResponse(created))
}

// get godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/events/{id} [get]
func (h *EventHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	c.JSON(http.StatusOK, newEventResponse(event))
}

// update godoc
// @Summary Replace an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Param request body EventRequest true "Request body"
// @Success 200 {object} EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/events/{id} [put]
func (h *EventHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid event payload")
		return
	}
	event := req.toDomain()
	event.ID = id

	ctx := c.Request.Context()
	if err := h.events.Update(ctx, event); err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	updated, err := h.events.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	c.JSON(http.StatusOK, newEventResponse(updated))
}

// delete godoc
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/events/{id} [delete]
func (h *EventHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	c.Status(http.StatusNoContent)
}

// registrations godoc
// @Summary List students booked on an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Success 200 {array} EventRegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/events/{id}/registrations [get]
func (h *EventHandler) registrations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	registrations, err := h.events.Registrations(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	c.JSON(http.StatusOK, mapSlice(registrations, newEventRegistrationResponse))
}

// register godoc
// @Summary Book a student on an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Param request body EventRegistrationRequest true "Request body"
// @Success 201 {object} EventRegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/events/{id}/registrations [post]
func (h *EventHandler) register(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req EventRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}
	registration, err := h.events.Register(c.Request.Context(), id, req.StudentID)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("event"))
		return
	}
	c.JSON(http.StatusCreated, newEventRegistrationResponse(registration))
}

// cancelRegistration godoc
// @Summary Cancel a booking
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Event ID"
// @Param student_id path integer true "Student ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/events/{id}/registrations/{student_id} [delete]
func (h *EventHandler) cancelRegistration(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(c, "student_id")
	if !ok {
		return
	}
	if err := h.events.CancelRegistration(c.Request.Context(), id, studentID); err != nil {
		respondError(c, h.logger, err, notFoundCase("registration"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (r EventRequest) toDomain() domain.Event {
	return domain.Event{
		Title:           r.Title,
		Description:     r.Description,
		EventDate:       r.EventDate,
		Location:        r.Location,
		MaxParticipants: r.MaxParticipants,
		Status:          r.Status,
	}
}

// AnnouncementHandler manages announcements for admins.
type AnnouncementHandler struct {
	announcements *usecase.AnnouncementService
	logger        *zap.Logger
	now           func() time.Time
}

func NewAnnouncementHandler(announcements *usecase.AnnouncementService, logger *zap.Logger) *AnnouncementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementHandler{announcements: announcements, logger: logger, now: time.Now}
}

// RegisterRoutes binds announcement routes on an admin-guarded group.
func (h *AnnouncementHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/announcements", h.list)
	r.POST("/announcements", h.create)
	r.GET("/announcements/:id", h.get)
	r.PUT("/announcements/:id", h.update)
	r.DELETE("/announcements/:id", h.delete)
}

// list supports ?priority= and ?active=true.
//
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param priority query string false "low, normal or high"
// @Param active query boolean false "Only announcements active now"
// @Param limit query integer false "Page size"
// @Param offset query integer false "Rows to skip"
// @Success 200 {array} AnnouncementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/announcements [get]
func (h *AnnouncementHandler) list(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	filter := port.AnnouncementFilter{
		Priority: queryPtr[domain.AnnouncementPriority](c, "priority"),
	}
	if active, _ := strconv.ParseBool(c.Query("active")); active {
		now := h.now().UTC()
		filter.ActiveAt = &now
	}

	announcements, err := h.announcements.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(announcements, newAnnouncementResponse))
}

// create godoc
// @Summary Create an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AnnouncementRequest true "Request body"
// @Success 201 {object} AnnouncementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/announcements [post]
func (h *AnnouncementHandler) create(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid announcement payload")
		return
	}
	announcement := h.fromRequest(req)
	announcement.AdminID = &admin.ID
	if announcement.PublishDate.IsZero() {
		announcement.PublishDate = h.now().UTC()
	}

	created, err := h.announcements.Create(c.Request.Context(), announcement)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newAnnouncementResponse(created))
}

// get godoc
// @Summary Get an announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Announcement ID"
// @Success 200 {object} AnnouncementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/announcements/{id} [get]
func (h *AnnouncementHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	announcement, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("announcement"))
		return
	}
	c.JSON(http.StatusOK, newAnnouncementResponse(announcement))
}

// update godoc
// @Summary Replace an announcement, keeping publish_date when omitted
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Announcement ID"
// @Param request body AnnouncementRequest true "Request body"
// @Success 200 {object} AnnouncementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/announcements/{id} [put]
func (h *AnnouncementHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid announcement payload")
		return
	}
	announcement := h.fromRequest(req)
	announcement.ID = id

	ctx := c.Request.Context()
	if err := h.announcements.Update(ctx, announcement); err != nil {
		respondError(c, h.logger, err, notFoundCase("announcement"))
		return
	}
	updated, err := h.announcements.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("announcement"))
		return
	}
	c.JSON(http.StatusOK, newAnnouncementResponse(updated))
}

// delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Announcement ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/announcements/{id} [delete]
func (h *AnnouncementHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, notFoundCase("announcement"))
		return
	}
	c.Status(http.StatusNoContent)
}

// fromRequest leaves PublishDate zero when the payload omits it.
func (h *AnnouncementHandler) fromRequest(r AnnouncementRequest) domain.Announcement {
	var publish time.Time
	if r.PublishDate != nil {
		publish = r.PublishDate.UTC()
	}
	return domain.Announcement{
		Title:       r.Title,
		Content:     r.Content,
		PublishDate: publish,
		ExpiryDate:  r.ExpiryDate,
		Priority:    r.Priority,
		Status:      r.Status,
	}
}

// StudentHandler manages the club roster for admins.
type StudentHandler struct {
	students *usecase.StudentService
	logger   *zap.Logger
	now      func() time.Time
}

func NewStudentHandler(students *usecase.StudentService, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, logger: logger, now: time.Now}
}

// RegisterRoutes binds student routes on an admin-guarded group.
func (h *StudentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/students", h.list)
	r.POST("/students", h.create)
	r.GET("/students/:id", h.get)
	r.PUT("/students/:id", h.update)
	r.DELETE("/students/:id", h.delete)
}

// list supports ?role= and ?membership_status=.
//
// @Summary List roster entries
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param role query string false "Student role"
// @Param membership_status query string false "Membership status"
// @Param limit query integer false "Page size"
// @Param offset query integer false "Rows to skip"
// @Success 200 {array} StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/students [get]
func (h *StudentHandler) list(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	students, err := h.students.List(c.Request.Context(), port.StudentFilter{
		Role:             queryPtr[domain.StudentRole](c, "role"),
		MembershipStatus: queryPtr[string](c, "membership_status"),
	}, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(students, newStudentResponse))
}

// create godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StudentRequest true "Request body"
// @Success 201 {object} StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/students [post]
func (h *StudentHandler) create(c *gin.Context) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid student payload")
		return
	}
	created, err := h.students.Create(c.Request.Context(), h.fromRequest(req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newStudentResponse(created))
}

// get godoc
// @Summary Get a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Student ID"
// @Success 200 {object} StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/students/{id} [get]
func (h *StudentHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("student"))
		return
	}
	c.JSON(http.StatusOK, newStudentResponse(student))
}

// update godoc
// @Summary Replace a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Student ID"
// @Param request body StudentRequest true "Request body"
// @Success 200 {object} StudentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/students/{id} [put]
func (h *StudentHandler) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid student payload")
		return
	}
	student := h.fromRequest(req)
	student.ID = id

	ctx := c.Request.Context()
	if err := h.students.Update(ctx, student); err != nil {
		respondError(c, h.logger, err, notFoundCase("student"))
		return
	}
	updated, err := h.students.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err, notFoundCase("student"))
		return
	}
	c.JSON(http.StatusOK, newStudentResponse(updated))
}

// delete godoc
// @Summary Delete a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Student ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/students/{id} [delete]
func (h *StudentHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, notFoundCase("student"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StudentHandler) fromRequest(r StudentRequest) domain.Student {
	joined := h.now().UTC()
	if r.JoinDate != nil {
		joined = r.JoinDate.UTC()
	}
	return domain.Student{
		FullName:         r.FullName,
		Email:            r.Email,
		StudentID:        r.StudentID,
		Department:       r.Department,
		YearOfStudy:      r.YearOfStudy,
		JoinDate:         joined,
		MembershipStatus: r.MembershipStatus,
		Role:             r.Role,
	}
}
