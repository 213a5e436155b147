package httpinterface

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/pkg/jwtauth"
)

const callerKey = "caller"

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("http request")
	}
}

// authenticate resolves the caller from the bearer token of the request.
func authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := jwtauth.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		caller, err := jwtauth.ParseToken(secret, token)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug(
				"rejected bearer token",
			)
			abortWithError(c, err)
			return
		}
		if !domain.IsValidAddress(caller) {
			abortWithError(c, errMissingCaller)
			return
		}

		c.Set(callerKey, domain.NormalizeAddress(caller))
		c.Next()
	}
}

// ownerOnly must follow authenticate.
func ownerOnly(isOwner func(caller string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isOwner(caller(c)) {
			abortWithError(c, errNotOwner)
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
