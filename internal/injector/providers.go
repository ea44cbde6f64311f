package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zengine/internal/core/engine"
	"github.com/zeusync/zengine/internal/core/observability/log"
)

var ProviderSet = wire.NewSet(ProvideLogger, engine.Provide)

// ProvideLogger builds the process logger at the configured level.
func ProvideLogger(cfg engine.Config) *log.Logger {
	return log.New(cfg.Level())
}
