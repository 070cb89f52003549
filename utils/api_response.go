package utils

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func CreateErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}
