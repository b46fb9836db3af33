package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/middleware"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/service"
	"github.com/supplysight/sentinel/test/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.InitTestLogger()
	os.Exit(m.Run())
}

func guardedRouter(svc service.IAuthzService, identity func(*gin.Context)) *gin.Engine {
	r := gin.New()
	if identity != nil {
		r.Use(func(c *gin.Context) {
			identity(c)
			c.Next()
		})
	}
	protected := r.Group("/users")
	protected.Use(middleware.RequirePermission(svc, "directory", model.LevelWrite))
	protected.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequirePermissionAllows(t *testing.T) {
	svc := new(mock.MockAuthzService)
	svc.On("Check", tmock.Anything, service.AccessCheck{
		UserID:   "u1",
		Resource: "directory",
		Level:    model.LevelWrite,
		Context:  map[string]interface{}{},
	}).Return(service.AccessDecision{Granted: true})

	r := guardedRouter(svc, func(c *gin.Context) { c.Set("userID", "u1") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRequirePermissionDenies(t *testing.T) {
	svc := new(mock.MockAuthzService)
	svc.On("Check", tmock.Anything, tmock.Anything).
		Return(service.AccessDecision{Granted: false})

	r := guardedRouter(svc, func(c *gin.Context) { c.Set("userID", "u1") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())
}

func TestRequirePermissionMissingIdentity(t *testing.T) {
	svc := new(mock.MockAuthzService)
	r := guardedRouter(svc, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Check", tmock.Anything, tmock.Anything)
}

func TestRequirePermissionForwardsDepartmentScope(t *testing.T) {
	svc := new(mock.MockAuthzService)
	var captured service.AccessCheck
	svc.On("Check", tmock.Anything, tmock.MatchedBy(func(check service.AccessCheck) bool {
		captured = check
		return true
	})).Return(service.AccessDecision{Granted: true})

	r := guardedRouter(svc, func(c *gin.Context) {
		c.Set("userID", "mgr")
		c.Set("departmentOnly", true)
		c.Set("departmentID", "d42")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mgr", captured.UserID)
	assert.Equal(t, true, captured.Context["departmentOnly"])
	assert.Equal(t, "d42", captured.Context["departmentID"])
}
