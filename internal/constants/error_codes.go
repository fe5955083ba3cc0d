package constants

// Stable failure categories carried on every error response.
const (
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidActor      = "INVALID_ACTOR"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNoCapacity        = "NO_CAPACITY"
	ErrCodeAlreadyActive     = "ALREADY_ACTIVE"
	ErrCodeAlreadyProcessed  = "ALREADY_PROCESSED"
	ErrCodePermanentlyBarred = "PERMANENTLY_BARRED"
	ErrCodeWindowExpired     = "WINDOW_EXPIRED"
	ErrCodeStoreFailure      = "STORE_FAILURE"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)
