package directory

import (
	"github.com/smallbiznis/rentora/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(service.NewService),
)
