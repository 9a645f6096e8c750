package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	"github.com/smallbiznis/rentora/pkg/money"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseInvoiceID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

type generateInvoicesRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	DueDate     string `json:"due_date" binding:"required"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	period := invoicedomain.BillingPeriod{}
	var err error
	if period.Start, err = parseDate(req.PeriodStart); err != nil {
		AbortWithError(c, newValidationError("period_start", "invalid_date", "invalid date"))
		return
	}
	if period.End, err = parseDate(req.PeriodEnd); err != nil {
		AbortWithError(c, newValidationError("period_end", "invalid_date", "invalid date"))
		return
	}
	if period.Due, err = parseDate(req.DueDate); err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_date", "invalid date"))
		return
	}

	run, err := s.invoiceSvc.Generate(c.Request.Context(), period)
	if err != nil {
		// Units billed before a mid-run failure stay committed; the
		// operator gets the partial run alongside the error.
		if errors.Is(err, invoicedomain.ErrPartialGeneration) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"data":  run,
				"error": errorPayload{Type: "partial_failure", Message: err.Error()},
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		parsed := invoicedomain.InvoiceStatus(strings.ToUpper(status))
		req.Status = &parsed
	}
	if raw := strings.TrimSpace(c.Query("rental_unit_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("rental_unit_id", "invalid_id", "invalid id"))
			return
		}
		req.RentalUnitID = &id
	}
	if raw := strings.TrimSpace(c.Query("tenant_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("tenant_id", "invalid_id", "invalid id"))
			return
		}
		req.TenantID = &id
	}
	if raw := strings.TrimSpace(c.Query("due_from")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			AbortWithError(c, newValidationError("due_from", "invalid_date", "invalid date"))
			return
		}
		req.DueFrom = &t
	}
	if raw := strings.TrimSpace(c.Query("due_to")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			AbortWithError(c, newValidationError("due_to", "invalid_date", "invalid date"))
			return
		}
		req.DueTo = &t
	}
	if err := c.ShouldBindQuery(&req.Page); err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// QuoteLateFee computes the accrued late fee for an invoice at a caller
// supplied daily rate. Pure read; applying the fee stays an explicit
// follow-up action. Terminal invoices report their stored fee unchanged.
func (s *Server) QuoteLateFee(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(c.Query("daily_rate")))
	if err != nil || rate.IsNegative() {
		AbortWithError(c, newValidationError("daily_rate", "invalid_daily_rate", "invalid daily rate"))
		return
	}

	asOf := s.clock.Now()
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		if asOf, err = parseDate(raw); err != nil {
			AbortWithError(c, newValidationError("as_of", "invalid_date", "invalid date"))
			return
		}
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	fee := money.Money{Amount: invoice.LateFee, Currency: invoice.Currency}
	frozen := invoice.Status.Terminal()
	if !frozen {
		fee = invoicedomain.LateFee(invoice.DueDate, asOf, money.Money{
			Amount:   rate,
			Currency: invoice.Currency,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"invoice_id":   invoice.ID,
		"days_overdue": invoicedomain.DaysOverdue(invoice.DueDate, asOf),
		"late_fee":     fee.Amount,
		"currency":     fee.Currency,
		"frozen":       frozen,
	}})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.MarkSent(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

type markPaidRequest struct {
	PaymentType     int64   `json:"payment_type"`
	PaymentMode     int64   `json:"payment_mode"`
	ReferenceNumber *string `json:"reference_number"`
	Notes           *string `json:"notes"`
	PaymentDate     *string `json:"payment_date"`
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	var details *invoicedomain.PaymentDetails
	if c.Request.ContentLength > 0 {
		var req markPaidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
			return
		}
		details = &invoicedomain.PaymentDetails{
			PaymentType:     req.PaymentType,
			PaymentMode:     req.PaymentMode,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		}
		if req.PaymentDate != nil {
			paidAt, err := parseDate(*req.PaymentDate)
			if err != nil {
				AbortWithError(c, newValidationError("payment_date", "invalid_date", "invalid date"))
				return
			}
			details.PaymentDate = &paidAt
		}
	}

	item, err := s.invoiceSvc.MarkPaid(c.Request.Context(), id, details)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MarkInvoiceOverdue(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.MarkOverdue(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type sweepOverdueRequest struct {
	AsOf *string `json:"as_of"`
}

func (s *Server) SweepOverdueInvoices(c *gin.Context) {
	today := s.clock.Now()
	if c.Request.ContentLength > 0 {
		var req sweepOverdueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
			return
		}
		if req.AsOf != nil {
			parsed, err := parseDate(*req.AsOf)
			if err != nil {
				AbortWithError(c, newValidationError("as_of", "invalid_date", "invalid date"))
				return
			}
			today = parsed
		}
	}

	transitioned, err := s.invoiceSvc.SweepOverdue(c.Request.Context(), today)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transitioned})
}
