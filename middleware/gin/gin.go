package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	admission "github.com/admitkit/go-admission"
)

// Admit creates a Gin middleware handler that gates routes with the
// declared tier.
//
// It resolves the request to a principal, evaluates the tier's quota
// through the provided Evaluator, attaches the standard `RateLimit-*`
// headers to every response, and aborts with 429 when the quota is
// exhausted. Behavior can be customized with functional options, such as
// changing how the authenticated identity is extracted (WithIdentityFunc)
// or how rejections are rendered (WithErrorHandler).
//
// Example:
//
//	engine := admission.NewEngine(store, registry)
//	router := gin.Default()
//	router.POST("/login", ginmw.Admit(engine, admission.TierCritical), loginHandler)
//	router.GET("/search", ginmw.Admit(engine, admission.TierMedium), searchHandler)
func Admit(eval admission.Evaluator, tier admission.Tier, options ...admission.Option) gin.HandlerFunc {
	cfg := admission.NewConfig(options...)

	return func(c *gin.Context) {
		id, authenticated := cfg.IdentityFunc(c.Request)
		principal := admission.ResolvePrincipal(id, authenticated, cfg.ClientAddrFunc(c.Request))

		verdict, err := eval.Evaluate(c.Request.Context(), principal, tier)
		if err != nil {
			cfg.Logger.Errorf("admission failed for key '%s': %v", principal.Key, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		admission.SetHeaders(c.Writer.Header(), verdict)

		if !verdict.Allowed {
			cfg.Logger.Debugf(
				"request denied for key '%s' on tier '%s'. Remaining: %d, Limit: %d",
				principal.Key, tier, verdict.Remaining, verdict.Limit,
			)
			cfg.ErrorHandler(c.Writer, c.Request, admission.ErrQuotaExceeded, verdict)
			c.Abort()
			return
		}

		cfg.Logger.Debugf(
			"request allowed for key '%s' on tier '%s'. Remaining: %d, Limit: %d",
			principal.Key, tier, verdict.Remaining, verdict.Limit,
		)

		c.Next()
	}
}
