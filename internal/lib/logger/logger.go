package logger

import (
	"log/slog"
	"strings"
)

func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "err",
		Value: slog.StringValue(err.Error()),
	}
}

// * Email masks the local part before the address reaches any log sink.
// Only the first two characters survive: "someone@x.com" -> "so*****@x.com".
func Email(email string) slog.Attr {
	return slog.Attr{
		Key:   "email",
		Value: slog.StringValue(maskEmail(email, 2)),
	}
}

func maskEmail(email string, keep int) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.Repeat("*", len(email))
	}

	local, domain := email[:at], email[at:]
	if keep > len(local) {
		keep = len(local)
	}

	return local[:keep] + strings.Repeat("*", len(local)-keep) + domain
}
