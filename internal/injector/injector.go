//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zengine/internal/core/engine"
)

func InitializeEngine(cfg engine.Config) (*engine.Engine, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
