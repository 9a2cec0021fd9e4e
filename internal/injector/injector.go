//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ccd/internal/config"
)

func InitializeSimulation(cfg config.Config) (*Simulation, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
