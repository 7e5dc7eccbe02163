package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/export"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore/gormstoretest"
	"github.com/xskcdf/Aquiis-sub005/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Kind    workflow.Kind   `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type record struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (e envelope) record(t *testing.T) record {
	t.Helper()
	var r record
	require.NoError(t, json.Unmarshal(e.Data, &r))
	return r
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := gormstoretest.New(t)
	users := port.ContextUserContext{}
	reg := prometheus.NewRegistry()
	metrics := executor.NewMetrics(reg)
	logger := zap.NewNop()

	deps := service.Deps{
		TxManager: store,
		Executor:  executor.New(store, logger, metrics),
		Audit:     executor.NewAuditLogger(store, users, port.SystemClock, metrics),
		Users:     users,
		Clock:     port.SystemClock,
		Logger:    utils.NewKeyValueLogger(logger),
	}

	services := Services{
		Directory:    service.NewDirectoryService(deps),
		Applications: service.NewApplicationService(deps),
		LeaseOffers:  service.NewLeaseOfferService(deps),
		Tours:        service.NewTourService(deps),
		Deposits:     service.NewDepositService(deps, export.NewDividendReportWriter(logger)),
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return NewServer(DefaultServerConfig(), services, handler, utils.NewKeyValueLogger(logger))
}

func do(t *testing.T, s *Server, method, path string, body any, withActor bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if withActor {
		req.Header.Set(HeaderUserID, "user-1")
		req.Header.Set(HeaderOrganizationID, "org-1")
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != xlsxContentType && w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind workflow.Kind
		want int
	}{
		{workflow.KindSucceeded, http.StatusOK},
		{workflow.KindRejected, http.StatusUnprocessableEntity},
		{workflow.KindConflict, http.StatusConflict},
		{workflow.KindFailed, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.kind))
		})
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, _ := do(t, s, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodPost, "/api/v1/properties", map[string]any{"address": "1 Main St", "monthly_rent": "900"}, true)

	w, _ := do(t, s, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workflow_executions_total")
}

func TestMissingActorIsRejected(t *testing.T) {
	s := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/v1/properties", map[string]any{
		"address":      "1 Main St",
		"monthly_rent": "1500",
	}, false)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, workflow.KindRejected, env.Kind)
	assert.Equal(t, "User context is incomplete", env.Message)
}

func TestInvalidBodyAndYear(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"malformed json", http.MethodPost, "/api/v1/properties", "{not json"},
		{"empty required body", http.MethodPost, "/api/v1/applications", nil},
		{"non numeric year", http.MethodGet, "/api/v1/pools/abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, s, tt.method, tt.path, tt.body, true)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestApplicationFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/v1/properties", map[string]any{
		"address":      "1 Main St",
		"city":         "Springfield",
		"monthly_rent": "1500",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	property := env.record(t)
	require.NotEmpty(t, property.ID)
	assert.Equal(t, "Available", property.Status)

	w, env = do(t, s, http.MethodPost, "/api/v1/prospects", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	prospect := env.record(t)

	w, env = do(t, s, http.MethodPost, "/api/v1/applications", map[string]any{
		"prospective_tenant_id": prospect.ID,
		"property_id":           property.ID,
		"monthly_income":        "6000",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	app := env.record(t)
	assert.Equal(t, "Submitted", app.Status)

	w, env = do(t, s, http.MethodPost, "/api/v1/applications/"+app.ID+"/approve", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Errors)

	w, env = do(t, s, http.MethodPost, "/api/v1/applications/"+app.ID+"/withdraw", nil, true)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	w, _ = do(t, s, http.MethodGet, "/api/v1/applications/"+app.ID, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_status":"Withdrawn"`)
}

func TestExportWithoutPoolIsRejected(t *testing.T) {
	s := newTestServer(t)

	w, env := do(t, s, http.MethodGet, "/api/v1/pools/2024/report", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "No investment pool exists for 2024", env.Message)
}
