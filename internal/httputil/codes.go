package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch without parsing human-readable text.
const (
	CodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeNotifierFailure     = "NOTIFIER_FAILURE"
	CodeInvalidAuthHeader   = "INVALID_AUTH_HEADER"
	CodeMissingAuth         = "MISSING_AUTH"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidTokenSubject = "INVALID_TOKEN_SUBJECT"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
)
