package services

import (
	"log"
	"os"
	"strings"
)

var exploradorDebugEnabled = false

func init() {
	// Enable debug logging if EXPLORADOR_DEBUG=1 or EXPLORADOR_DEBUG=true
	if v := os.Getenv("EXPLORADOR_DEBUG"); v != "" {
		v = strings.ToLower(v)
		exploradorDebugEnabled = v == "1" || v == "true" || v == "yes"
		if exploradorDebugEnabled {
			log.Println("[EXPLORADOR] Debug logging: ENABLED")
		}
	}
}

// debugLog logs only when EXPLORADOR_DEBUG is enabled.
// Use this for verbose per-request details: model responses, resolver steps, etc.
func debugLog(format string, args ...interface{}) {
	if exploradorDebugEnabled {
		log.Printf("[EXPLORADOR DEBUG] "+format, args...)
	}
}

// infoLog always logs important service events.
// Use this for fallback triggers, API errors, quota exhaustion, etc.
func infoLog(format string, args ...interface{}) {
	log.Printf("[EXPLORADOR] "+format, args...)
}
