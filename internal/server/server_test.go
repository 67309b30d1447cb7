package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/hostelhub/internal/config"
	"anoa.com/hostelhub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	testutil.CreateAdmin(t, db, "admin@hostel.test")
	testutil.CreateWarden(t, db, "warden.a@hostel.test", "A")
	testutil.CreateWarden(t, db, "warden.b@hostel.test", "B")

	cfg := &config.Config{
		AppEnv:             "test",
		JWTSecret:          "test-secret",
		JWTIssuer:          "hostelhub",
		JWTTTL:             time.Hour,
		RateLimitComplaint: time.Minute,
		MenuCacheTTL:       time.Minute,
	}

	srv, err := NewServer(cfg, db, rdb)
	require.NoError(t, err)
	return &harness{t: t, handler: srv.Handler()}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) login(email string) string {
	h.t.Helper()

	w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": testutil.Password})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(h.t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type complaintBody struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Resolution *string `json:"resolution"`
}

func TestComplaintLifecycle(t *testing.T) {
	h := newHarness(t)
	adminToken := h.login("admin@hostel.test")

	w := h.do(http.MethodPost, "/api/students", adminToken, gin.H{
		"name":         "Ravi Kumar",
		"email":        "ravi@hostel.test",
		"password":     testutil.Password,
		"roll_number":  "R100",
		"hostel_block": "A",
		"room_number":  "12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	studentToken := h.login("ravi@hostel.test")

	w = h.do(http.MethodPost, "/api/complaints", studentToken, gin.H{
		"title":       "Leaking tap",
		"description": "The tap in room 12 keeps leaking",
		"category":    "Plumbing",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[complaintBody](t, w)
	assert.Equal(t, "Pending", created.Status)

	t.Run("second complaint inside the cooldown is throttled", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/complaints", studentToken, gin.H{
			"title":       "Another",
			"description": "Another issue",
			"category":    "Other",
		})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	mine := decode[[]complaintBody](t, h.do(http.MethodGet, "/api/complaints/my-complaints", studentToken, nil))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	wardenA := h.login("warden.a@hostel.test")
	wardenB := h.login("warden.b@hostel.test")

	blockA := decode[[]complaintBody](t, h.do(http.MethodGet, "/api/complaints/warden", wardenA, nil))
	assert.Len(t, blockA, 1)
	blockB := decode[[]complaintBody](t, h.do(http.MethodGet, "/api/complaints/warden", wardenB, nil))
	assert.Empty(t, blockB)

	w = h.do(http.MethodGet, "/api/complaints/"+created.ID, wardenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPut, "/api/complaints/"+created.ID+"/resolve", wardenA, gin.H{"resolution": "Washer replaced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[complaintBody](t, h.do(http.MethodGet, "/api/complaints/"+created.ID, studentToken, nil))
	assert.Equal(t, "Resolved", got.Status)
	require.NotNil(t, got.Resolution)
	assert.Equal(t, "Washer replaced", *got.Resolution)

	w = h.do(http.MethodDelete, "/api/complaints/"+created.ID, studentToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodGet, "/api/notifications/unread-count", studentToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouting(t *testing.T) {
	h := newHarness(t)
	adminToken := h.login("admin@hostel.test")

	t.Run("unknown route", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/does-not-exist", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "route not found", decode[map[string]string](t, w)["message"])
	})

	t.Run("missing token", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/students", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/students", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		wardenToken := h.login("warden.a@hostel.test")
		w := h.do(http.MethodPost, "/api/invoices", wardenToken, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/students", adminToken, `{"name":"X Y","email":"x@hostel.test","password":"secret123","roll_number":"R1","hostel_block":"A","room_number":"1","nickname":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login role mismatch discloses the real role", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "admin@hostel.test",
			"password": testutil.Password,
			"role":     "student",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "admin", decode[map[string]string](t, w)["actual_role"])
	})

	t.Run("health", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := h.do(http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hostelhub_http_requests_total")
	})
}
