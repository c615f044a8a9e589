// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "bookwish.db"
	DefaultRegion      = "us"
	DefaultNumResults  = 20
	MaxNumResults      = 50
	DefaultWorkers     = 2
	DefaultQueueSize   = 128
	DefaultAudnexusURL = "https://api.audnex.us"
)

// Timeouts
const (
	CatalogHTTPTimeout = 30 * time.Second
	WebhookTimeout     = 10 * time.Second
	SessionTTL         = 7 * 24 * time.Hour
	ShutdownTimeout    = 5 * time.Second
)

// Cookie and header names
const (
	SessionCookie = "bookwish_session"
	RefreshHeader = "HX-Refresh"
)

// Settings keys
const (
	SettingAutoDownload = "auto_download"
)
