package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders  = "Origin,Content-Type,Accept,X-Request-ID,X-Trace-ID,traceparent"
	corsExposeHeaders = "X-Request-ID,X-Trace-ID"
)

// originPolicy decides which page origins may call the agent. An entry with
// port "*" (http://localhost:*) admits any port on that scheme and host,
// which is how front-end dev servers move around.
type originPolicy struct {
	any      bool
	exact    map[string]struct{}
	anyPorts map[string]struct{}
}

func newOriginPolicy(allowed []string) originPolicy {
	p := originPolicy{exact: map[string]struct{}{}, anyPorts: map[string]struct{}{}}
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "*":
			p.any = true
		case strings.HasSuffix(origin, ":*"):
			p.anyPorts[strings.TrimSuffix(origin, ":*")] = struct{}{}
		case origin != "":
			p.exact[origin] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	_, ok := p.anyPorts[u.Scheme+"://"+u.Hostname()]
	return ok
}

// CORS lets the rendering page call the agent from its own origin. Cookies
// are never involved, so credentials are not advertised.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if policy.any {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if policy.allows(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
