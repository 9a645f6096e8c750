package server

import (
	"net/http"
	"testing"

	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid period", invoicedomain.ErrInvalidPeriod, http.StatusBadRequest},
		{"invalid generation day", settingsdomain.ErrInvalidGenerationDay, http.StatusBadRequest},
		{"not found", invoicedomain.ErrInvoiceNotFound, http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"invalid transition", &invoicedomain.TransitionError{From: invoicedomain.InvoiceStatusPaid, To: invoicedomain.InvoiceStatusCancelled}, http.StatusConflict},
		{"invalid deletion", invoicedomain.ErrInvalidDeletion, http.StatusConflict},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"missing tenant", directorydomain.ErrMissingTenantSnapshot, http.StatusUnprocessableEntity},
		{"missing currency", directorydomain.ErrMissingCurrency, http.StatusUnprocessableEntity},
		{"directory down", directorydomain.ErrDirectoryUnavailable, http.StatusServiceUnavailable},
		{"validation payload", newValidationError("id", "invalid_id", "invalid id"), http.StatusBadRequest},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, payload.Type)
		})
	}
}
