package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pkdx/pkdb-api/internal/middleware"
	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/service"
	"github.com/pkdx/pkdb-api/internal/store/memory"
)

func newDatasetHandlerFixture() *DatasetHandler {
	svc := service.NewDatasetService(memory.New(), nil, nil, nil, nil)
	return NewDatasetHandler(svc)
}

func TestDatasetHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDatasetHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString(`{"drug_name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "r1", Role: models.RoleResearcher})

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatasetHandlerCreateMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDatasetHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/datasets", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDatasetHandlerUpdateEmptyPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDatasetHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/datasets/some-id", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "some-id"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "r1", Role: models.RoleResearcher})

	handler.Update(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
