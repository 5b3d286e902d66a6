package response

const (
	CodeInvalidRequest   = "invalid_request"
	CodeNotFound         = "not_found"
	CodeFileTooLarge     = "file_too_large"
	CodeInternalError    = "internal_error"
	CodeRouteNotFound    = "route_not_found"
	CodeMethodNotAllowed = "method_not_allowed"
)

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   CodeInvalidRequest,
		Details: "Invalid request format",
	}
)
