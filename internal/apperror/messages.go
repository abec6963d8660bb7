package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Too many quote requests, upstream is throttling",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Blockchain/RPC errors
	CodeEthereumConnectionFailed: "Failed to connect to RPC node",
	CodeEthereumRPCError:         "RPC call failed",
	CodeChainNotConfigured:       "Chain is not configured",

	// Venue/quote errors
	CodeInvalidVenue:       "Invalid venue descriptor",
	CodeUnsupportedVenue:   "Unsupported venue kind",
	CodeQuoteFailed:        "Failed to get quote",
	CodeInvalidQuote:       "Invalid quote data",
	CodeContractCallFailed: "Smart contract call failed",
	CodeAggregatorAPIError: "Aggregator API error",

	// Token errors
	CodeUnknownToken: "Unknown token",
	CodeSameToken:    "Input and output token must differ",

	// Scan errors
	CodeInvalidScanRange: "Scan range must satisfy 0 < min < max",
	CodeInvalidSearch:    "Invalid search parameters",
	CodeSurfaceNotFound:  "Scanning surface not found",
	CodeSurfaceStopped:   "Scanning surface is stopped",
	CodeScanFailed:       "Scan failed",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
