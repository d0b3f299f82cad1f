package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope carries the human-readable message at the top level under
// "detail" alongside the structured error.
type ErrorEnvelope struct {
	Detail string   `json:"detail"`
	Error  APIError `json:"error"`
}

// Page is a cursor paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
