package invoice

import (
	"github.com/smallbiznis/rentora/internal/invoice/domain"
	"github.com/smallbiznis/rentora/internal/invoice/service"
	"github.com/smallbiznis/rentora/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		repository.ProvideStore[domain.RentInvoice],
		service.NewService,
	),
)
