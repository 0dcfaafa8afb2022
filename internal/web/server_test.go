package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/bizsight/internal/config"
	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Upload: config.UploadConfig{
			MaxFileSize:   5 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			TempDir:       t.TempDir(),
			Timeout:       time.Minute,
		},
		Import: config.ImportConfig{HistoryLimit: 20},
		Security: config.SecurityConfig{
			APIKeys:        []string{testAPIKey},
			AllowedOrigins: []string{"http://localhost:3000"},
			EnableCSP:      true,
		},
		Auth: config.AuthConfig{TokenSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour},
	}
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *core.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)
	svc := core.NewService(store.NewMemory(), nil, cfg)
	return &testServer{t: t, handler: NewServer(svc, cfg).Router(), svc: svc}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.do(req)
}

func (ts *testServer) upload(path, token, field, filename, contentType, csv string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(ts.t, err)
	_, err = io.WriteString(part, csv)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return ts.do(req)
}

// register creates an account and returns its bearer token.
func (ts *testServer) register(username, mobile string) string {
	ts.t.Helper()
	rec := ts.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName":     "Test User",
		"username":     username,
		"email":        username + "@example.com",
		"password":     "secret123",
		"mobileNumber": mobile,
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess core.Session
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")

	rec := ts.json(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ada", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[core.Session](t, rec).Token)

	rec = ts.json(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ada", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH001", decode[ErrorResponse](t, rec).Code)

	rec = ts.json(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", decode[core.User](t, rec).Username)

	rec = ts.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "Other", "username": "ada", "email": "x@example.com", "password": "secret123", "mobileNumber": "5550000000",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already taken", decode[ErrorResponse](t, rec).Message)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"garbage token", map[string]string{"Authorization": "Bearer abc.def.ghi"}, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic Zm9vOmJhcg=="}, http.StatusUnauthorized},
		{"bad api key", map[string]string{"X-API-Key": "wrong", "X-User-ID": uuid.NewString()}, http.StatusUnauthorized},
		{"api key without user", map[string]string{"X-API-Key": testAPIKey}, http.StatusUnauthorized},
		{"api key with user", map[string]string{"X-API-Key": testAPIKey, "X-User-ID": uuid.NewString()}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := ts.do(req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInventoryUpload_Statuses(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")

	rec := ts.upload("/api/inventory/upload-csv", token, "productsFile", "stock.csv", "text/csv",
		"name,price,stock,category\nWidget,9.99,50,Electronics\nGadget,5,3,Books\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[core.ImportReport](t, rec)
	assert.Equal(t, core.OutcomeFullSuccess, report.Outcome)
	assert.Equal(t, 2, report.Succeeded)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"outcome", "message", "processedCount", "failedCount", "attempted", "errors"} {
		assert.Contains(t, raw, key)
	}

	rec = ts.upload("/api/inventory/upload-csv", token, "productsFile", "stock.csv", "text/csv",
		"name,price,stock,category\nWidget,9.99,50,Toys\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.OutcomeFullRejection, decode[core.ImportReport](t, rec).Outcome)

	rec = ts.json(http.MethodGet, "/api/inventory", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Product](t, rec), 2)
}

func TestSalesUpload_PartialIs207(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")

	ts.upload("/api/inventory/upload-csv", token, "productsFile", "stock.csv", "text/csv",
		"name,price,stock,category\nWidget,9.99,3,Electronics\n")

	rec := ts.upload("/api/sales/upload", token, "salesFile", "sales.csv", "application/vnd.ms-excel",
		"productName,quantity\nWidget,2\nWidget,5\n")
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	report := decode[core.ImportReport](t, rec)
	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, report.Errors.Processing, 1)
	assert.Contains(t, report.Errors.Processing[0].Reason, "Available: 1")

	rec = ts.json(http.MethodGet, "/api/sales", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.Sale](t, rec), 1)

	rec = ts.json(http.MethodGet, "/api/imports", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.ImportRun](t, rec), 2)
}

func TestUpload_BoundaryChecks(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")
	csv := "name,price,stock,category\nWidget,1,1,Food\n"

	tests := []struct {
		name        string
		field       string
		filename    string
		contentType string
		wantCode    string
	}{
		{"wrong mime", "productsFile", "stock.csv", "application/json", "FILE002"},
		{"octet stream without csv extension", "productsFile", "stock.txt", "application/octet-stream", "FILE002"},
		{"wrong field", "file", "stock.csv", "text/csv", "FILE004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.upload("/api/inventory/upload-csv", token, tt.field, tt.filename, tt.contentType, csv)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}

	t.Run("octet stream with csv extension", func(t *testing.T) {
		rec := ts.upload("/api/inventory/upload-csv", token, "productsFile", "stock.CSV", "application/octet-stream", csv)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("just under the cap", func(t *testing.T) {
		row := strings.Repeat("W", 80) + ",1,1,Food\n"
		fits := csv + strings.Repeat(row, ((5<<20)-len(csv))/len(row))
		require.LessOrEqual(t, len(fits), 5<<20)
		rec := ts.upload("/api/inventory/upload-csv", token, "productsFile", "fits.csv", "text/csv", fits)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("file over the cap", func(t *testing.T) {
		big := csv + strings.Repeat("Widget,1,1,Food\n", (5<<20)/16+1)
		rec := ts.upload("/api/inventory/upload-csv", token, "productsFile", "big.csv", "text/csv", big)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("body over the cap", func(t *testing.T) {
		huge := csv + strings.Repeat("Widget,1,1,Food\n", (7<<20)/16)
		rec := ts.upload("/api/inventory/upload-csv", token, "productsFile", "huge.csv", "text/csv", huge)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)
	})
}

func TestProductsAndManualSale(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")
	other := ts.register("bob", "5559876543")

	rec := ts.json(http.MethodPost, "/api/inventory", token, map[string]any{"name": "Lamp", "price": "19.99", "stock": 4, "category": "Home Goods"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lamp := decode[core.Product](t, rec)

	rec = ts.json(http.MethodPost, "/api/inventory", token, map[string]any{"name": "Lamp", "price": "1", "stock": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.json(http.MethodPost, "/api/inventory", token, map[string]any{"name": "Kite", "price": "1", "stock": 1, "category": "Toys"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "Invalid category")

	rec = ts.json(http.MethodPut, "/api/inventory/"+lamp.ID.String(), other, map[string]any{"name": "Stolen", "price": "1", "stock": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.json(http.MethodPost, "/api/sales/manual-entry", token, map[string]any{"productId": lamp.ID, "quantity": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Insufficient stock for "Lamp". Available: 4, Requested: 9.`, decode[ErrorResponse](t, rec).Message)

	rec = ts.json(http.MethodPost, "/api/sales/manual-entry", token, map[string]any{"productId": lamp.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "39.98", decode[core.Sale](t, rec).TotalAmount.StringFixed(2))

	rec = ts.json(http.MethodDelete, "/api/inventory/"+lamp.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.json(http.MethodDelete, "/api/inventory/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings_ResetAndDownload(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("ada", "5551234567")
	ts.upload("/api/inventory/upload-csv", token, "productsFile", "stock.csv", "text/csv",
		"name,price,stock,category\nWidget,9.99,50,Electronics\n")

	rec := ts.json(http.MethodGet, "/api/settings/download-raw-data?kind=products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bizsight-products-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "name,price,stock,category,createdAt\nWidget,9.99,50,Electronics,"))

	rec = ts.json(http.MethodGet, "/api/settings/download-raw-data?kind=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.json(http.MethodPost, "/api/settings/reset-data", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["productsDeleted"])

	rec = ts.json(http.MethodGet, "/api/inventory", token, nil)
	assert.Empty(t, decode[[]core.Product](t, rec))
}

func TestHealthAndHeaders(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/inventory", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec = ts.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := &rateLimiter{visitors: make(map[string]*visitor), rate: 2, window: time.Minute}
	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "limits are per client")
}
