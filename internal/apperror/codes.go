package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Radar-specific error codes
const (
	// Blockchain/RPC errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeChainNotConfigured       Code = "CHAIN_NOT_CONFIGURED"

	// Venue/quote errors
	CodeInvalidVenue       Code = "INVALID_VENUE"
	CodeUnsupportedVenue   Code = "UNSUPPORTED_VENUE"
	CodeQuoteFailed        Code = "QUOTE_FAILED"
	CodeInvalidQuote       Code = "INVALID_QUOTE"
	CodeContractCallFailed Code = "CONTRACT_CALL_FAILED"
	CodeAggregatorAPIError Code = "AGGREGATOR_API_ERROR"

	// Token errors
	CodeUnknownToken Code = "UNKNOWN_TOKEN"
	CodeSameToken    Code = "SAME_TOKEN"

	// Scan errors
	CodeInvalidScanRange Code = "INVALID_SCAN_RANGE"
	CodeInvalidSearch    Code = "INVALID_SEARCH_PARAMS"
	CodeSurfaceNotFound  Code = "SURFACE_NOT_FOUND"
	CodeSurfaceStopped   Code = "SURFACE_STOPPED"
	CodeScanFailed       Code = "SCAN_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
