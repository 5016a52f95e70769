package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-academic-api/internal/middleware"
	"github.com/noah-isme/uni-academic-api/internal/models"
	appErrors "github.com/noah-isme/uni-academic-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withClaims(c *gin.Context, userID string, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: role})
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if dest != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

type stubResolver map[string]*models.Student

func (r stubResolver) ResolveByUser(ctx context.Context, userID string) (*models.Student, error) {
	if s, ok := r[userID]; ok {
		return s, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}
