package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const OrderNumberPrefix = "ORD-"

// GenerateOrderNumber returns the fixed prefix followed by the first eight
// characters of a random UUID, upper-cased.
func GenerateOrderNumber() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return OrderNumberPrefix + strings.ToUpper(token[:8])
}

// ParseID parses a positive decimal identifier from a path segment.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}
