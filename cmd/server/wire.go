//go:build wireinject

package main

import (
	"github.com/google/wire"

	"sovereign-chat/internal/domain"
	"sovereign-chat/internal/infrastructure"
	"sovereign-chat/internal/interfaces"
	"sovereign-chat/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(DataInitializer), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
