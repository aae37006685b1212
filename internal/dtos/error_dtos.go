package dtos

// ValidationErrorDetail is the structured per-field entry returned
// alongside a validation error response.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
