package security

import (
	"net/http"
	"strings"
	"sync"

	"EduProject/tools"
	errs "EduProject/tools/errs"
	"EduProject/tools/security"

	"github.com/gin-gonic/gin"
)

// context keys shared with downstream handlers
const (
	CtxIdentityKey = "identity"      // string, the verified user ID
	CtxTokenKey    = "authorization" // string, the raw token
)

type Options struct {
	HeaderToken               string // default "Authorization"
	EnableAuthorizationBearer bool   // default true
	Secret                    []byte // HMAC secret; default from JWT_SECRET env
}

var (
	defaultOnce sync.Once
	defaultOpts *Options
)

func DefaultOptions() *Options {
	defaultOnce.Do(func() {
		defaultOpts = &Options{
			HeaderToken:               "Authorization",
			EnableAuthorizationBearer: true,
			Secret:                    []byte(tools.GetEnv("JWT_SECRET", "dev-secret")),
		}
	})
	return defaultOpts
}

// Middleware verifies the bearer token and stores the subject identity into
// the gin context. Used by the push HTTP surface; websocket handshakes carry
// their credential to the gateway directly.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))

		// accept Authorization: Bearer xxx
		if opts.EnableAuthorizationBearer && strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[len("bearer "):])
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthFailed)
			return
		}

		claims, err := security.Verify(security.DefaultOptions(opts.Secret), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthFailed.WithDetail(err.Error()))
			return
		}
		sub, err := claims.Subject()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrAuthFailed.WithDetail(err.Error()))
			return
		}

		c.Set(CtxTokenKey, token)
		c.Set(CtxIdentityKey, sub)
		c.Next()
	}
}
