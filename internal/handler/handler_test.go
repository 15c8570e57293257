package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eduspark/edu-platform-api/internal/middleware"
	"github.com/eduspark/edu-platform-api/internal/models"
)

// responseEnvelope mirrors the wire shape for assertions.
type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func newJSONContext(t *testing.T, method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	c.Request = httptest.NewRequest(method, target, body)
	if payload != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

func asUser(c *gin.Context, id int64, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: id,
		Email:  "user@example.com",
		Role:   role,
	})
}

func withPathID(c *gin.Context, value string) {
	c.Params = gin.Params{{Key: "id", Value: value}}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}
