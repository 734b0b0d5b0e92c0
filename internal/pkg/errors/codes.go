package errors

// Error code constants.
// Errors carry code + message; backend logs are always in English.

// Product / provenance error codes.
const (
	CodeProductNotFound  = "PRODUCT_NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// Journey / geocoding error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeGeocodeMiss      = "GEOCODE_MISS"
	CodeGeocoderDown     = "GEOCODER_UNAVAILABLE"
)

// Verification error codes.
const (
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeOracleUnavailable  = "ORACLE_UNAVAILABLE"
)

// Generic error codes.
const (
	CodeInternalError = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
)
