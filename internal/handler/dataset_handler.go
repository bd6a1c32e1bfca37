package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/service"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
	"github.com/pkdx/pkdb-api/pkg/response"
)

// DatasetHandler wires HTTP endpoints to the dataset service.
type DatasetHandler struct {
	service *service.DatasetService
}

// NewDatasetHandler creates a new handler.
func NewDatasetHandler(svc *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// Create godoc
// @Summary Register dataset
// @Description Register a pharmacokinetic dataset owned by the caller
// @Tags Datasets
// @Accept json
// @Produce json
// @Param payload body models.DatasetCreate true "Dataset payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /datasets [post]
func (h *DatasetHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.DatasetCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dataset payload"))
		return
	}

	dataset, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dataset)
}

// List godoc
// @Summary List datasets
// @Tags Datasets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /datasets [get]
func (h *DatasetHandler) List(c *gin.Context) {
	datasets, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, datasets)
}

// Get godoc
// @Summary Get dataset
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id} [get]
func (h *DatasetHandler) Get(c *gin.Context) {
	dataset, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dataset)
}

// Update godoc
// @Summary Update dataset
// @Description Apply a partial update; only provided fields change
// @Tags Datasets
// @Accept json
// @Produce json
// @Param id path string true "Dataset ID"
// @Param payload body models.DatasetPatch true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id} [patch]
func (h *DatasetHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var patch models.DatasetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patch payload"))
		return
	}
	if patch.IsEmpty() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "patch payload has no fields"))
		return
	}

	dataset, err := h.service.Update(c.Request.Context(), c.Param("id"), patch, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dataset)
}

// Lock godoc
// @Summary Lock dataset
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id}/lock [post]
func (h *DatasetHandler) Lock(c *gin.Context) {
	h.setLock(c, true)
}

// Unlock godoc
// @Summary Unlock dataset
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id}/unlock [post]
func (h *DatasetHandler) Unlock(c *gin.Context) {
	h.setLock(c, false)
}

func (h *DatasetHandler) setLock(c *gin.Context, locked bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dataset, err := h.service.SetLock(c.Request.Context(), c.Param("id"), locked, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dataset)
}

// RequestAccess godoc
// @Summary File access request
// @Tags Access Requests
// @Accept json
// @Produce json
// @Param id path string true "Dataset ID"
// @Param payload body models.AccessRequestCreate true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id}/requests [post]
func (h *DatasetHandler) RequestAccess(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AccessRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid access request payload"))
		return
	}

	request, err := h.service.RequestAccess(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// ListRequests godoc
// @Summary List access requests for a dataset
// @Tags Access Requests
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id}/requests [get]
func (h *DatasetHandler) ListRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListAccessRequests(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests)
}

// AuditLog godoc
// @Summary List a dataset's audit trail
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /datasets/{id}/audit [get]
func (h *DatasetHandler) AuditLog(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.ListAuditLog(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries)
}
