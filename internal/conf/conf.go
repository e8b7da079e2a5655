package conf

import "time"

// Bootstrap is the root configuration of the LockerLink service.
type Bootstrap struct {
	Server    *Server
	OAuth     *OAuth
	Discord   *Discord
	Catalog   *Catalog
	Locker    *Locker
	Scheduler *Scheduler
	Debug     *Debug
	Log       *Log
}

// Server holds the transport settings.
type Server struct {
	HTTP *HTTP
}

// HTTP is the web boundary listener (OAuth callback, debug, metrics).
type HTTP struct {
	Network string
	Addr    string
	Timeout time.Duration
}

// OAuth describes the Epic Games OAuth client and its endpoints.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	AccountURL   string
	Scopes       []string
	// StateTTL bounds how long an issued login URL stays redeemable.
	StateTTL time.Duration
	// MaxPending caps the number of outstanding pending authorizations.
	MaxPending int
	Timeout    time.Duration
	ProxyURL   string
}

// Discord holds the bot credentials. An empty Token disables the gateway.
type Discord struct {
	Token   string
	AppID   string
	GuildID string
}

// Catalog describes the cosmetic catalog endpoint. URLTemplate may contain
// {accountId} (linked account id) and {discordId} (chat user id).
type Catalog struct {
	URLTemplate string
	Timeout     time.Duration
	ProxyURL    string
}

// Locker configures the paginated locker viewer.
type Locker struct {
	SessionTTL time.Duration
}

// Scheduler holds cron specs for the background jobs.
type Scheduler struct {
	SweepSpec       string
	RefreshSpec     string
	RefreshWindow   time.Duration
	RefreshDisabled bool
}

// Debug toggles the introspection endpoints. Closed by default.
type Debug struct {
	Tokens bool
}

// Log configures the zap logger.
type Log struct {
	Level      string
	Format     string
	Env        string
	OutputFile string
}
