// Package service implements the rent invoice lifecycle over gorm storage.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/clock"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/rentora/internal/ledger/domain"
	"github.com/smallbiznis/rentora/internal/metrics"
	"github.com/smallbiznis/rentora/pkg/db/option"
	"github.com/smallbiznis/rentora/pkg/db/pagination"
	"github.com/smallbiznis/rentora/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Directory directorydomain.Service
	Recorder  ledgerdomain.Recorder
	Repo      repository.Repository[domain.RentInvoice]
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	directory directorydomain.Service
	recorder  ledgerdomain.Recorder
	repo      repository.Repository[domain.RentInvoice]
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		directory: p.Directory,
		recorder:  p.Recorder,
		repo:      p.Repo,
		metrics:   p.Metrics,
	}
}

const defaultPageSize = 50

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.RentInvoice{}
	if req.Status != nil {
		filter.Status = *req.Status
	}
	if req.RentalUnitID != nil {
		filter.RentalUnitID = *req.RentalUnitID
	}
	if req.TenantID != nil {
		filter.TenantID = *req.TenantID
	}

	pageSize := req.Page.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	// One extra row tells us whether another page exists.
	opts := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Field: "id"}),
		option.WithLimit(pageSize + 1),
	}
	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidPageToken
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidPageToken
		}
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "id", Operator: option.GT, Value: afterID}))
	}
	if req.DueFrom != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "due_date", Operator: option.GTE, Value: *req.DueFrom}))
	}
	if req.DueTo != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "due_date", Operator: option.LTE, Value: *req.DueTo}))
	}

	rows, err := s.repo.Find(ctx, &filter, opts...)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	resp := domain.ListInvoiceResponse{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID.String()})
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		resp.PageInfo = pagination.PageInfo{NextPageToken: token, HasMore: true}
	}

	invoices := make([]domain.RentInvoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, *row)
	}
	resp.Invoices = invoices
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.RentInvoice, error) {
	invoice, err := s.repo.FindOne(ctx, &domain.RentInvoice{ID: id})
	if err != nil {
		return domain.RentInvoice{}, err
	}
	if invoice == nil {
		return domain.RentInvoice{}, domain.ErrInvoiceNotFound
	}
	return *invoice, nil
}

// findInvoiceTx loads an invoice on the caller's transaction.
func findInvoiceTx(ctx context.Context, tx *gorm.DB, id snowflake.ID) (domain.RentInvoice, error) {
	var invoice domain.RentInvoice
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM rent_invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return domain.RentInvoice{}, err
	}
	if invoice.ID == 0 {
		return domain.RentInvoice{}, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

// dateOf strips time-of-day; lifecycle dates are calendar dates.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
