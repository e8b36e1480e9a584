package gcppubsub

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
)

// maxLabelLength is the Pub/Sub limit for label values
const maxLabelLength = 63

// buildFilter returns a subscription filter matching messages whose
// attribute key equals the interest
func buildFilter(key string, interest reconciler.Interest) string {
	return fmt.Sprintf("attributes.%s = %s", key, strconv.Quote(string(interest)))
}

// parseFilter is the inverse of buildFilter. It reports false for filters
// it did not produce.
func parseFilter(filter, key string) (reconciler.Interest, bool) {
	prefix := fmt.Sprintf("attributes.%s = ", key)
	if !strings.HasPrefix(filter, prefix) {
		return "", false
	}
	value, err := strconv.Unquote(strings.TrimPrefix(filter, prefix))
	if err != nil {
		return "", false
	}
	return reconciler.Interest(value), true
}

// labelValue folds an interest into the character set Pub/Sub allows for
// label values: lowercase letters, digits, underscores and dashes.
func labelValue(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune('-')
		}
		if b.Len() >= maxLabelLength {
			break
		}
	}
	out := b.String()
	if len(out) > maxLabelLength {
		out = out[:maxLabelLength]
	}
	return out
}
