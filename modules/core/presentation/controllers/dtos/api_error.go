package dtos

// APIError is the JSON error envelope shared by every API controller.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}
