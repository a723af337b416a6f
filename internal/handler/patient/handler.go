package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	patientsvc "github.com/clinicops/frontdesk-api/internal/service/patient"
	"github.com/clinicops/frontdesk-api/pkg/httputil"
)

type Handler struct {
	service *patientsvc.Service
}

func NewHandler(service *patientsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Create)
		patients.GET("", h.List)
		patients.GET("/queue", h.Queue)
		patients.GET("/unassigned", h.Unassigned)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	patient, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusCreated, patient)
}

func (h *Handler) List(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, patients)
}

// Queue returns the waiting patients in serial order.
func (h *Handler) Queue(c *gin.Context) {
	httputil.Success(c, http.StatusOK, h.service.Queue(c.Request.Context()))
}

// Unassigned is the same view read straight from the database.
func (h *Handler) Unassigned(c *gin.Context) {
	patients, err := h.service.Unassigned(c.Request.Context())
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, patients)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid patient ID")
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, patient)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid patient ID")
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	patient, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, patient)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.Error(c, http.StatusBadRequest, "invalid patient ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, http.StatusOK, nil)
}
