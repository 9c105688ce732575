package api

import (
	"encoding/json"
	"net/http"
)

// HTTPError represents a structured HTTP error response.
type HTTPError struct {
	Status int    `json:"status"`
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
}

// statusTypeMap maps HTTP status codes to RFC 9110 types.
var statusTypeMap = map[int]string{
	400: "https://tools.ietf.org/html/rfc9110#section-15.5.1",  // Bad Request
	401: "https://tools.ietf.org/html/rfc9110#section-15.5.2",  // Unauthorized
	403: "https://tools.ietf.org/html/rfc9110#section-15.5.3",  // Forbidden
	404: "https://tools.ietf.org/html/rfc9110#section-15.5.5",  // Not Found
	405: "https://tools.ietf.org/html/rfc9110#section-15.5.6",  // Method Not Allowed
	409: "https://tools.ietf.org/html/rfc9110#section-15.5.10", // Conflict
	500: "https://tools.ietf.org/html/rfc9110#section-15.6.1",  // Internal Server Error
	502: "https://tools.ietf.org/html/rfc9110#section-15.6.3",  // Bad Gateway
	503: "https://tools.ietf.org/html/rfc9110#section-15.6.4",  // Service Unavailable
}

// apierror writes a structured error response.
func apierror(w http.ResponseWriter, msg string, status int) {
	response := HTTPError{
		Status: status,
		Title:  msg,
	}
	if typeUrl, ok := statusTypeMap[status]; ok {
		response.Type = typeUrl
	}
	w.WriteHeader(status)
	serveJSON(response, w)
}

func serveJSON(obj any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(obj)
}
