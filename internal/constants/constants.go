package constants

import "time"

const (
	// Matches younger than this are still being played or imported and never count
	// towards an encounter summary.
	FreshnessCutoff = 30 * time.Minute

	RecentFormSize   = 5
	TopChampionLimit = 3
)

const (
	ExternalAPITimeout = 10 * time.Second
	GameClientTimeout  = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ImportTimeout      = 30 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// personal development keys allow 20 requests per second and 100 per two minutes
	VendorRequestInterval = 1200 * time.Millisecond
	VendorBurst           = 1
	VendorMatchPageSize   = 100

	ImportInitialBackoff = 500 * time.Millisecond
	ImportMaxBackoff     = 4 * time.Second

	// a Retry-After beyond this is treated as a misbehaving header
	ImportMaxRetryAfter = 2 * time.Minute
)

const (
	DefaultPollInterval = 2 * time.Second
	ShutdownTimeout     = 5 * time.Second
)
