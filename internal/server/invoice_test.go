package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/internal/clock"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvoiceService struct {
	invoicedomain.Service

	generateRun invoicedomain.GenerationRun
	generateErr error
	invoice     invoicedomain.RentInvoice
}

func (s *stubInvoiceService) Generate(ctx context.Context, period invoicedomain.BillingPeriod) (invoicedomain.GenerationRun, error) {
	return s.generateRun, s.generateErr
}

func (s *stubInvoiceService) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.RentInvoice, error) {
	return s.invoice, nil
}

func newTestEngine(t *testing.T, svc invoicedomain.Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	engine := NewEngine()
	srv := &Server{
		engine:     engine,
		clock:      clock.NewFakeClock(time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)),
		invoiceSvc: svc,
	}
	srv.registerAPIRoutes()
	return engine
}

func TestGenerateReportsPartialRun(t *testing.T) {
	stub := &stubInvoiceService{
		generateRun: invoicedomain.GenerationRun{
			CreatedInvoices: []invoicedomain.RentInvoice{{InvoiceNumber: "INV-000001"}},
		},
		generateErr: fmt.Errorf("%w: unit 9: insert failed", invoicedomain.ErrPartialGeneration),
	}
	engine := newTestEngine(t, stub)

	body := `{"period_start":"2024-01-01","period_end":"2024-01-31","due_date":"2024-02-07"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// The committed part of the run rides along with the error payload.
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INV-000001")
	assert.Contains(t, w.Body.String(), "partial_failure")
}

func TestQuoteLateFeeComputesAccruedFee(t *testing.T) {
	stub := &stubInvoiceService{invoice: invoicedomain.RentInvoice{
		ID:       1,
		DueDate:  time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC),
		Status:   invoicedomain.InvoiceStatusOverdue,
		Currency: "MVR",
	}}
	engine := newTestEngine(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/1/late-fee?daily_rate=50&as_of=2024-02-10", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"days_overdue":3`)
	assert.Contains(t, w.Body.String(), "150")
	assert.Contains(t, w.Body.String(), `"frozen":false`)
}

func TestQuoteLateFeeFrozenOnceTerminal(t *testing.T) {
	stub := &stubInvoiceService{invoice: invoicedomain.RentInvoice{
		ID:       1,
		DueDate:  time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC),
		Status:   invoicedomain.InvoiceStatusPaid,
		LateFee:  decimal.NewFromInt(75),
		Currency: "MVR",
	}}
	engine := newTestEngine(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/1/late-fee?daily_rate=50&as_of=2024-03-01", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// A paid invoice keeps its stored fee no matter how far asOf moves.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"frozen":true`)
	assert.Contains(t, w.Body.String(), "75")
}

func TestQuoteLateFeeRequiresDailyRate(t *testing.T) {
	engine := newTestEngine(t, &stubInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/1/late-fee", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
