package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	assignsvc "github.com/clinicops/frontdesk-api/internal/service/assignment"
	syncsvc "github.com/clinicops/frontdesk-api/internal/service/sync"
	"github.com/clinicops/frontdesk-api/pkg/httputil"
)

type Handler struct {
	engine *assignsvc.Service
	sync   *syncsvc.Service
}

func NewHandler(engine *assignsvc.Service, sync *syncsvc.Service) *Handler {
	return &Handler{engine: engine, sync: sync}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.ListByDate)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Reschedule)
		appointments.DELETE("/:id", h.Delete)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.CreateAppointment(c.Request.Context(), &req); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusCreated, nil)
}

// ListByDate returns the appointments for ?date=YYYY-MM-DD, defaulting
// to today.
func (h *Handler) ListByDate(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			httputil.Error(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	appointments, err := h.sync.AppointmentsForDate(c.Request.Context(), date)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, appointments)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	apt, err := h.sync.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, apt)
}

// Reschedule moves or annotates a booked appointment.
func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Reschedule(c.Request.Context(), id, &req); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	if err := h.sync.DeleteAppointment(c.Request.Context(), id); err != nil {
		httputil.HandleError(c, err)
		return
	}
	if _, err := h.sync.Reload(c.Request.Context()); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

type updateStatusRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Status    string    `json:"status" binding:"required"`
}

// UpdateStatus routes the status change through the engine so the board
// partitions stay consistent with the backend.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.UpdateStatus(c.Request.Context(), req.PatientID, req.Status); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}
