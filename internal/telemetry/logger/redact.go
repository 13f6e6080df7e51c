package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key patterns whose string values are always redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"credential",
	"authorization",
	"encryption_key",
	"bearer",
	"cookie",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if masked := RedactString(strVal); masked != strVal {
			return slog.String(a.Key, masked)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// RedactString masks the password of a URL with userinfo, e.g. a Redis DSN
// "redis://user:pw@host:6379/0". Other values are returned unchanged.
func RedactString(value string) string {
	if !strings.Contains(value, "://") || !strings.Contains(value, "@") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); !ok {
		return value
	}
	u.User = url.User(u.User.Username())
	return strings.Replace(u.String(), "@", ":***@", 1)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
// Fingerprints of secrets are safe to log and are never redacted.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if strings.HasSuffix(keyLower, "_fingerprint") {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
