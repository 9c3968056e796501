package types

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WelcomeResponse is returned by GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}
