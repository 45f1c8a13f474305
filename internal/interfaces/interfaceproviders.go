package interfaces

import (
	"github.com/google/wire"

	"sovereign-chat/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
