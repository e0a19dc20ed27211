package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Checks the bearer token against the accepted list. With auth off every
// request passes.
func (self *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !self.Config.Api.AuthRequired {
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			self.monitor.GetReport().Api.Errors.AuthFailures.Inc()
			self.abort(c, http.StatusUnauthorized, errors.New("missing bearer token")).
				Debug("Request without a token")
			return
		}

		if len(self.allowed) > 0 {
			if _, ok := self.allowed[token]; !ok {
				self.monitor.GetReport().Api.Errors.AuthFailures.Inc()
				self.abort(c, http.StatusForbidden, errors.New("token not allowed")).
					Debug("Request with an unknown token")
				return
			}
		}
	}
}

// Enforces the per-token request budget. Unauthenticated requests are keyed
// by their remote address.
func (self *Server) checkRate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if self.Config.Api.RateLimitPerMinute <= 0 {
			return
		}

		key := bearerToken(c.GetHeader("Authorization"))
		if key == "" {
			key = c.Request.RemoteAddr
		}

		reservation := self.limiterFor(key).Reserve()
		if reservation.OK() {
			delay := reservation.Delay()
			if delay == 0 {
				return
			}

			// Over budget, the reservation would make the caller wait
			reservation.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
		}

		self.monitor.GetReport().Api.Errors.RateLimitedPeers.Inc()
		self.abort(c, http.StatusTooManyRequests, errors.New("rate limit exceeded")).
			WithField("key", key).
			Debug("Request over the rate limit")
	}
}

func (self *Server) limiterFor(key string) *rate.Limiter {
	if x, found := self.limiters.Get(key); found {
		return x.(*rate.Limiter)
	}

	limit := self.Config.Api.RateLimitPerMinute
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(limit)), limit)
	self.limiters.Set(key, limiter, cache.DefaultExpiration)
	return limiter
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
