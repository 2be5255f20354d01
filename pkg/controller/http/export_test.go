package http

// Test-only aliases for request parsing internals
var (
	ParseQuery   = parseQuery
	NewValidator = newValidator
	EncodeQuery  = encodeQuery
)
