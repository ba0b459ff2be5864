package http

import (
	"context"
	"errors"
	"strings"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// fetchErrorResponse maps a snapshot fetch error to one error response.
func fetchErrorResponse(err error) *JSONResponseBuilder {
	if errors.Is(err, context.DeadlineExceeded) {
		return BadGatewayError("veri kaynağı zamanında yanıt vermedi")
	}
	return BadGatewayError("veriler alınamadı: " + err.Error())
}
