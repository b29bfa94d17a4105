package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Development Riot API keys allow 20 requests per second (and 100 per two
// minutes, which the limiter approximates by staying well under it).
const (
	RiotRequestsPerSecond = 20
	RiotRequestBurst      = 20
)

const (
	RecentMatchLimit = 20
)
