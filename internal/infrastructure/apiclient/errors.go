package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/99minutos/orders-console/internal/core/domain"
)

// errorBody covers the error envelopes the upstream is known to send:
// {"message": "..."}, {"message": ["...", "..."]}, {"error": "..."}.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func remoteError(status int, body []byte) *domain.RemoteError {
	rerr := &domain.RemoteError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		rerr.Code = eb.Code
		rerr.Message = messageText(eb.Message)
		if rerr.Message == "" {
			rerr.Message = eb.Error
		}
	}
	if rerr.Message == "" {
		rerr.Message = http.StatusText(status)
	}
	return rerr
}

func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
