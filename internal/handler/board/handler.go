// Package board exposes the schedule board itself: its current state,
// the slot grid, and the assignment operations driven by drag and drop.
package board

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/dragdrop"
	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/schedule"
	assignsvc "github.com/clinicops/frontdesk-api/internal/service/assignment"
	syncsvc "github.com/clinicops/frontdesk-api/internal/service/sync"
	"github.com/clinicops/frontdesk-api/internal/store"
	"github.com/clinicops/frontdesk-api/pkg/httputil"
)

type Handler struct {
	store      *store.Store
	engine     *assignsvc.Service
	sync       *syncsvc.Service
	dispatcher *dragdrop.Dispatcher
}

func NewHandler(st *store.Store, engine *assignsvc.Service, sync *syncsvc.Service, dispatcher *dragdrop.Dispatcher) *Handler {
	return &Handler{
		store:      st,
		engine:     engine,
		sync:       sync,
		dispatcher: dispatcher,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	board := r.Group("/board")
	{
		board.GET("", h.State)
		board.GET("/slots", h.Slots)
		board.POST("/assign", h.Assign)
		board.POST("/reassign", h.Reassign)
		board.POST("/unassign", h.Unassign)
		board.POST("/drag-end", h.DragEnd)
		board.POST("/preview", h.Preview)
		board.POST("/layout", h.Layout)
		board.POST("/reload", h.Reload)
	}
}

// State returns both partitions plus the doctor roster.
func (h *Handler) State(c *gin.Context) {
	httputil.Success(c, http.StatusOK, gin.H{
		"queue":    h.store.Queue(),
		"assigned": h.store.Assigned(),
		"doctors":  h.store.Doctors(),
	})
}

// Slots returns the grid's time keys in display order.
func (h *Handler) Slots(c *gin.Context) {
	httputil.Success(c, http.StatusOK, gin.H{
		"slots":        schedule.Slots(),
		"slot_minutes": schedule.SlotMinutes,
		"open_hour":    schedule.OpenHour,
		"close_hour":   schedule.CloseHour,
	})
}

type assignRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date"`
	TimeKey   string    `json:"time" binding:"required,timekey"`
}

func (h *Handler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	if err := h.engine.Assign(c.Request.Context(), req.PatientID, req.DoctorID, date, req.TimeKey); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

func (h *Handler) Reassign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	if err := h.engine.Reassign(c.Request.Context(), req.PatientID, req.DoctorID, date, req.TimeKey); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

type unassignRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
}

func (h *Handler) Unassign(c *gin.Context) {
	var req unassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Unassign(c.Request.Context(), req.PatientID); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

type dragEndRequest struct {
	PatientID  uuid.UUID `json:"patient_id" binding:"required"`
	DropZoneID string    `json:"drop_zone_id" binding:"required"`
	Date       string    `json:"date"`
}

func (h *Handler) DragEnd(c *gin.Context) {
	var req dragEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	if err := h.dispatcher.DragEnd(c.Request.Context(), req.PatientID, req.DropZoneID, date); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}

type previewRequest struct {
	PatientID  uuid.UUID          `json:"patient_id" binding:"required"`
	DropZoneID string             `json:"drop_zone_id" binding:"required"`
	Metrics    *model.GridMetrics `json:"metrics"`
}

// Preview returns the rectangle a card would occupy at the drop zone,
// without mutating the board.
func (h *Handler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	m := model.DefaultGridMetrics()
	if req.Metrics != nil {
		m = *req.Metrics
	}

	rect, err := h.dispatcher.Preview(req.PatientID, req.DropZoneID, m)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, rect)
}

type layoutRequest struct {
	Metrics *model.GridMetrics `json:"metrics"`
}

type cardLayout struct {
	PatientID  uuid.UUID        `json:"patient_id"`
	Assignment model.Assignment `json:"assignment"`
	Rect       model.Rect       `json:"rect"`
}

// Layout returns a rectangle for every visible card on the board, for
// the caller's measured grid geometry.
func (h *Handler) Layout(c *gin.Context) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	m := model.DefaultGridMetrics()
	if req.Metrics != nil {
		m = *req.Metrics
	}

	cards := make([]cardLayout, 0)
	for _, p := range h.store.Assigned() {
		a, ok := schedule.AssignmentFor(p.Appointment)
		if !ok || !a.Status.Active() {
			continue
		}
		rect, ok := schedule.Layout(a, h.store.DoctorIndex(a.DoctorID), m)
		if !ok {
			continue
		}
		cards = append(cards, cardLayout{
			PatientID:  p.ID,
			Assignment: a,
			Rect:       rect,
		})
	}
	httputil.Success(c, http.StatusOK, cards)
}

// Reload forces a full refetch from the backend.
func (h *Handler) Reload(c *gin.Context) {
	state, err := h.sync.Reload(c.Request.Context())
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, gin.H{
		"queue":    len(state.Queue),
		"assigned": len(state.Assigned),
		"doctors":  len(state.Doctors),
	})
}

// parseDate parses an optional YYYY-MM-DD body field; empty means today
// (a zero time, resolved by the engine).
func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}
