package nethttp

import (
	"net/http"

	admission "github.com/admitkit/go-admission"
)

// Middleware creates an admission middleware for the standard `net/http`
// library, gating the wrapped handler with the declared tier.
//
// Each request is resolved to a principal (authenticated identity if
// present, otherwise the normalized client address), evaluated against the
// tier's quota, and either forwarded or rejected with 429. The standard
// `RateLimit-*` headers are attached to every response, success or
// rejection. The middleware never touches request or response bodies.
//
// The tier is declared where the route is wired, one wrap per route or
// route group:
//
//	engine := admission.NewEngine(store, registry)
//	mux := http.NewServeMux()
//	mux.Handle("/login", nethttp.Middleware(engine, admission.TierCritical)(loginHandler))
//	mux.Handle("/search", nethttp.Middleware(engine, admission.TierMedium)(searchHandler))
func Middleware(eval admission.Evaluator, tier admission.Tier, options ...admission.Option) func(http.Handler) http.Handler {
	cfg := admission.NewConfig(options...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, authenticated := cfg.IdentityFunc(r)
			principal := admission.ResolvePrincipal(id, authenticated, cfg.ClientAddrFunc(r))

			verdict, err := eval.Evaluate(r.Context(), principal, tier)
			if err != nil {
				cfg.Logger.Errorf("admission failed for key '%s': %v", principal.Key, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			admission.SetHeaders(w.Header(), verdict)

			if !verdict.Allowed {
				cfg.Logger.Debugf(
					"request denied for key '%s' on tier '%s'. Remaining: %d, Limit: %d",
					principal.Key, tier, verdict.Remaining, verdict.Limit,
				)
				cfg.ErrorHandler(w, r, admission.ErrQuotaExceeded, verdict)
				return
			}

			cfg.Logger.Debugf(
				"request allowed for key '%s' on tier '%s'. Remaining: %d, Limit: %d",
				principal.Key, tier, verdict.Remaining, verdict.Limit,
			)
			next.ServeHTTP(w, r)
		})
	}
}
