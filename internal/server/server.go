// Package server exposes the billing engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	invoicedomain "github.com/smallbiznis/rentora/internal/invoice/domain"
	ledgerdomain "github.com/smallbiznis/rentora/internal/ledger/domain"
	"github.com/smallbiznis/rentora/internal/scheduler"
	settingsdomain "github.com/smallbiznis/rentora/internal/settings/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	clock        clock.Clock
	invoiceSvc   invoicedomain.Service
	ledgerSvc    ledgerdomain.Recorder
	directorySvc directorydomain.Service
	settingsSvc  settingsdomain.Service
	scheduler    *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Clock        clock.Clock
	InvoiceSvc   invoicedomain.Service
	LedgerSvc    ledgerdomain.Recorder
	DirectorySvc directorydomain.Service
	SettingsSvc  settingsdomain.Service
	Scheduler    *scheduler.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		clock:        p.Clock,
		invoiceSvc:   p.InvoiceSvc,
		ledgerSvc:    p.LedgerSvc,
		directorySvc: p.DirectorySvc,
		settingsSvc:  p.SettingsSvc,
		scheduler:    p.Scheduler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	invoices := v1.Group("/invoices")
	invoices.POST("/generate", s.GenerateInvoices)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.GET("/:id/late-fee", s.QuoteLateFee)
	invoices.POST("/:id/send", s.MarkInvoiceSent)
	invoices.POST("/:id/pay", s.MarkInvoicePaid)
	invoices.POST("/:id/overdue", s.MarkInvoiceOverdue)
	invoices.POST("/:id/cancel", s.CancelInvoice)
	invoices.DELETE("/:id", s.DeleteInvoice)
	invoices.POST("/sweep-overdue", s.SweepOverdueInvoices)

	v1.GET("/units/:id/payments", s.ListUnitPayments)

	v1.GET("/scheduler/status", s.GetSchedulerStatus)

	v1.GET("/settings/rent", s.GetRentSettings)
	v1.PUT("/settings/rent", s.UpdateRentSettings)

	v1.POST("/directory/reconcile", s.ReconcileUnitStatuses)
}
