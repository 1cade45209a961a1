package admission

import (
	"net/http"
	"strconv"
)

// Standardized quota header names, attached to every response that passed
// through the admission middleware, success or rejection.
const (
	// HeaderPolicy carries the policy descriptor, "<limit>;w=<window_seconds>".
	HeaderPolicy = "RateLimit-Policy"
	// HeaderLimit carries the effective (post-multiplier) limit.
	HeaderLimit = "RateLimit-Limit"
	// HeaderRemaining carries the requests left in the current window.
	HeaderRemaining = "RateLimit-Remaining"
	// HeaderReset carries the window end as a unix timestamp.
	HeaderReset = "RateLimit-Reset"
	// HeaderRetryAfter carries the back-off in seconds, rejections only.
	HeaderRetryAfter = "Retry-After"
)

// SetHeaders writes the quota headers derived from a verdict. Retry-After
// is included only when the verdict denies the request.
func SetHeaders(h http.Header, v Verdict) {
	limit := strconv.FormatInt(v.Limit, 10)
	h.Set(HeaderPolicy, limit+";w="+strconv.FormatInt(int64(v.Window.Seconds()), 10))
	h.Set(HeaderLimit, limit)
	h.Set(HeaderRemaining, strconv.FormatInt(v.Remaining, 10))
	h.Set(HeaderReset, strconv.FormatInt(v.ResetAt.Unix(), 10))

	if !v.Allowed {
		retryAfter := int64(v.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		h.Set(HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
	}
}

func formatSeconds(s int64) string {
	if s == 1 {
		return "1 second"
	}
	return strconv.FormatInt(s, 10) + " seconds"
}
