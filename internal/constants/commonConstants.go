package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusSuccess APIStatus = "success"
	APIStatusError   APIStatus = "error"

	CachePrefixUser      CachePrefix = "USER_"
	CachePrefixRateLimit CachePrefix = "RL_"
)

const (
	// CancellationWindow is how long after approval a volunteer may self-cancel.
	CancellationWindow = 12 * time.Hour

	DefaultLocation = "Default Location"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// NotificationStream is the Redis stream an external mailer consumes.
	NotificationStream      = "shifts:published"
	NotificationStreamGroup = "mailer"

	// MaxSeriesOccurrences caps how many shifts one RRULE may create.
	MaxSeriesOccurrences = 52
)
