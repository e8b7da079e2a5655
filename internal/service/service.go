// Package service adapts the business layer to the web and chat boundaries.
package service

import "github.com/google/wire"

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewOAuthService, NewBotService)
