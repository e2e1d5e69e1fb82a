package form

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer rewrites a server-provided error message before it enters
// the form's error map. The default strips all markup; callers with a
// trusted backend can replace it via WithMessageSanitizer.
type Sanitizer func(message string) string

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// sanitizeMessage is the default Sanitizer: server messages render
// verbatim in whatever surface consumes the snapshot, so anything that
// looks like markup is removed outright.
func sanitizeMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(messageSanitizer().Sanitize(trimmed))
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}

func sanitizeErrorMap(src map[string]string, sanitize Sanitizer) Errors {
	if len(src) == 0 {
		return nil
	}
	out := make(Errors, len(src))
	for field, msg := range src {
		if sanitize != nil {
			msg = sanitize(msg)
		}
		out[field] = msg
	}
	return out
}
