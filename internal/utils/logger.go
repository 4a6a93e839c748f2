package utils

import (
	"log"
	"strings"
)

// LogEvent writes one structured line per domain event. Messages carry
// identifiers and amounts, never full payloads. An empty request id is
// printed as "-" so the field stays grep-able.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
