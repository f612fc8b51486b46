package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	billingoverviewdomain "github.com/smallbiznis/netbill/internal/billingoverview/domain"
	obslogger "github.com/smallbiznis/netbill/internal/observability/logger"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOverview struct {
	summary billingoverviewdomain.Summary
	err     error
}

func (s stubOverview) GetSummary(context.Context) (billingoverviewdomain.Summary, error) {
	return s.summary, s.err
}

func newTestServer(t *testing.T, overview billingoverviewdomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{}))
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:      engine,
		DB:       testutil.OpenDB(t),
		Log:      zap.NewNop(),
		Overview: overview,
	})
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthzPingsDatabase(t *testing.T) {
	s := newTestServer(t, stubOverview{})

	rec := doRequest(t, s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReportsUnavailableWhenDatabaseClosed(t *testing.T) {
	s := newTestServer(t, stubOverview{})
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := doRequest(t, s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSummaryReturnsOverview(t *testing.T) {
	rate := 0.5
	s := newTestServer(t, stubOverview{summary: billingoverviewdomain.Summary{
		TotalRevenue:   1000,
		TotalInvoiced:  2000,
		PaidAmount:     1000,
		PendingAmount:  600,
		OverdueAmount:  400,
		CollectionRate: &rate,
		HasData:        true,
	}})

	rec := doRequest(t, s, http.MethodGet, "/ops/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data billingoverviewdomain.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2000), body.Data.TotalInvoiced)
	assert.Equal(t, int64(400), body.Data.OverdueAmount)
	require.NotNil(t, body.Data.CollectionRate)
	assert.InDelta(t, 0.5, *body.Data.CollectionRate, 1e-9)
}

func TestGetSummaryHidesInternalErrors(t *testing.T) {
	s := newTestServer(t, stubOverview{err: errors.New("pq: relation does not exist")})

	rec := doRequest(t, s, http.MethodGet, "/ops/summary")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestErrorResponseCarriesRequestID(t *testing.T) {
	s := newTestServer(t, stubOverview{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/ops/summary", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.Error.RequestID)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestMapErrorValidation(t *testing.T) {
	status, payload := mapError(validation.New("customer_id", "required", "customer is required"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "customer_id", payload.Errors[0].Field)
}

func TestMapErrorNotFound(t *testing.T) {
	status, payload := mapError(ErrNotFound)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
}
