// Package conf provides configuration management using Viper.
// It supports loading configuration from YAML files and environment variables,
// with CLI flag overrides.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// NewBootstrap loads the LockerLink configuration.
//
// Configuration priority: Environment variables > Config file > Defaults
//
// Environment variables use the LOCKERLINK_ prefix (LOCKERLINK_OAUTH_CLIENT_ID).
// The variable names of the original deployment are honoured as well:
//   - EPIC_CLIENT_ID, EPIC_CLIENT_SECRET, EPIC_REDIRECT_URI: OAuth client
//   - APP_URL: public base URL, used to derive the redirect URI and catalog URL
//   - TOKEN: Discord bot token
//   - PORT: HTTP listen port
//   - DEBUG_TOKENS: enables /debug/tokens/{id}
func NewBootstrap(configPath string) (*Bootstrap, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LOCKERLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("oauth.client_id", "EPIC_CLIENT_ID", "LOCKERLINK_OAUTH_CLIENT_ID")
	_ = v.BindEnv("oauth.client_secret", "EPIC_CLIENT_SECRET", "LOCKERLINK_OAUTH_CLIENT_SECRET")
	_ = v.BindEnv("oauth.redirect_uri", "EPIC_REDIRECT_URI", "LOCKERLINK_OAUTH_REDIRECT_URI")
	_ = v.BindEnv("app_url", "APP_URL", "LOCKERLINK_APP_URL")
	_ = v.BindEnv("discord.token", "TOKEN", "DISCORD_TOKEN", "LOCKERLINK_DISCORD_TOKEN")
	_ = v.BindEnv("server.http.port", "PORT")
	_ = v.BindEnv("debug.tokens", "DEBUG_TOKENS", "LOCKERLINK_DEBUG_TOKENS")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	appURL := strings.TrimRight(v.GetString("app_url"), "/")

	addr := v.GetString("server.http.addr")
	if port := v.GetString("server.http.port"); port != "" {
		addr = ":" + port
	}

	redirectURI := v.GetString("oauth.redirect_uri")
	if redirectURI == "" && appURL != "" {
		redirectURI = appURL + "/auth/callback"
	}

	catalogURL := v.GetString("catalog.url_template")
	if catalogURL == "" && appURL != "" {
		catalogURL = appURL + "/api/cosmetics/{accountId}"
	}

	bc := &Bootstrap{
		Server: &Server{
			HTTP: &HTTP{
				Network: v.GetString("server.http.network"),
				Addr:    addr,
				Timeout: v.GetDuration("server.http.timeout"),
			},
		},
		OAuth: &OAuth{
			ClientID:     v.GetString("oauth.client_id"),
			ClientSecret: v.GetString("oauth.client_secret"),
			RedirectURI:  redirectURI,
			AuthURL:      v.GetString("oauth.auth_url"),
			TokenURL:     v.GetString("oauth.token_url"),
			AccountURL:   v.GetString("oauth.account_url"),
			Scopes:       v.GetStringSlice("oauth.scopes"),
			StateTTL:     v.GetDuration("oauth.state_ttl"),
			MaxPending:   v.GetInt("oauth.max_pending"),
			Timeout:      v.GetDuration("oauth.timeout"),
			ProxyURL:     v.GetString("oauth.proxy_url"),
		},
		Discord: &Discord{
			Token:   v.GetString("discord.token"),
			AppID:   v.GetString("discord.app_id"),
			GuildID: v.GetString("discord.guild_id"),
		},
		Catalog: &Catalog{
			URLTemplate: catalogURL,
			Timeout:     v.GetDuration("catalog.timeout"),
			ProxyURL:    v.GetString("catalog.proxy_url"),
		},
		Locker: &Locker{
			SessionTTL: v.GetDuration("locker.session_ttl"),
		},
		Scheduler: &Scheduler{
			SweepSpec:       v.GetString("scheduler.sweep_spec"),
			RefreshSpec:     v.GetString("scheduler.refresh_spec"),
			RefreshWindow:   v.GetDuration("scheduler.refresh_window"),
			RefreshDisabled: v.GetBool("scheduler.refresh_disabled"),
		},
		Debug: &Debug{
			Tokens: v.GetBool("debug.tokens"),
		},
		Log: &Log{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Env:        v.GetString("log.env"),
			OutputFile: v.GetString("log.output_file"),
		},
	}

	if err := Validate(bc); err != nil {
		return nil, err
	}

	return bc, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.addr", ":3000")
	v.SetDefault("server.http.timeout", 30*time.Second)

	v.SetDefault("oauth.auth_url", "https://www.epicgames.com/id/authorize")
	v.SetDefault("oauth.token_url", "https://account-public-service-prod.ol.epicgames.com/account/api/oauth/token")
	v.SetDefault("oauth.account_url", "https://account-public-service-prod.ol.epicgames.com/account/api/public/account")
	v.SetDefault("oauth.scopes", []string{"basic_profile"})
	v.SetDefault("oauth.state_ttl", 10*time.Minute)
	v.SetDefault("oauth.max_pending", 10000)
	v.SetDefault("oauth.timeout", 15*time.Second)

	v.SetDefault("catalog.timeout", 20*time.Second)

	v.SetDefault("locker.session_ttl", 5*time.Minute)

	v.SetDefault("scheduler.sweep_spec", "@every 30s")
	v.SetDefault("scheduler.refresh_spec", "@every 10m")
	v.SetDefault("scheduler.refresh_window", 30*time.Minute)

	v.SetDefault("debug.tokens", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that all required configuration fields are present and valid.
// It returns an error listing all missing required fields.
func Validate(bc *Bootstrap) error {
	var missingFields []string

	if bc.OAuth == nil || bc.OAuth.ClientID == "" {
		missingFields = append(missingFields, "oauth.client_id (EPIC_CLIENT_ID)")
	}
	if bc.OAuth == nil || bc.OAuth.ClientSecret == "" {
		missingFields = append(missingFields, "oauth.client_secret (EPIC_CLIENT_SECRET)")
	}
	if bc.OAuth == nil || bc.OAuth.RedirectURI == "" {
		missingFields = append(missingFields, "oauth.redirect_uri (EPIC_REDIRECT_URI or APP_URL)")
	}
	if bc.Catalog == nil || bc.Catalog.URLTemplate == "" {
		missingFields = append(missingFields, "catalog.url_template (APP_URL)")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required configuration fields: %s", strings.Join(missingFields, ", "))
	}

	return nil
}
