package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextSessionKey stores the visitor session id on the gin context.
const ContextSessionKey = "session_id"

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session assigns every visitor a uuid session id kept in a cookie. Malformed ids are replaced.
func Session(opts SessionOptions) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return func(c *gin.Context) {
		sid, err := c.Cookie(opts.CookieName)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
		}
		maxAge := 0
		if opts.TTL > 0 {
			maxAge = int(opts.TTL.Seconds())
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, sid, maxAge, "/", "", opts.Secure, true)
		c.Set(ContextSessionKey, sid)
		c.Next()
	}
}

// SessionID returns the session id set by Session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}

func validSessionID(sid string) bool {
	_, err := uuid.Parse(sid)
	return sid != "" && err == nil
}
