package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/service"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
	"github.com/pkdx/pkdb-api/pkg/response"
)

// RoleHandler wires HTTP endpoints to the role upgrade workflow.
type RoleHandler struct {
	service *service.RoleService
}

// NewRoleHandler creates a new handler.
func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{service: svc}
}

// Create godoc
// @Summary File role upgrade request
// @Description Viewers may request elevation to researcher; admin is never requestable
// @Tags Roles
// @Accept json
// @Produce json
// @Param payload body models.RoleUpgradeRequestCreate true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roles/requests [post]
func (h *RoleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.RoleUpgradeRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List godoc
// @Summary List role upgrade requests
// @Tags Roles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /roles/requests [get]
func (h *RoleHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests)
}

// Approve godoc
// @Summary Approve role upgrade request
// @Description Marks the request approved and elevates the requester
// @Tags Roles
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roles/requests/{id}/approve [post]
func (h *RoleHandler) Approve(c *gin.Context) {
	h.resolve(c, true)
}

// Reject godoc
// @Summary Reject role upgrade request
// @Tags Roles
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roles/requests/{id}/reject [post]
func (h *RoleHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h *RoleHandler) resolve(c *gin.Context, approve bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		request *models.RoleUpgradeRequest
		err     error
	)
	if approve {
		request, err = h.service.Approve(c.Request.Context(), c.Param("id"), claims)
	} else {
		request, err = h.service.Reject(c.Request.Context(), c.Param("id"), claims)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request)
}
