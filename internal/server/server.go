// Package server wires the transports: the web boundary, the Discord gateway and the scheduler.
package server

import (
	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer, NewDiscordServer, NewCronServer)
