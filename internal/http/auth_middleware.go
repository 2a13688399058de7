package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notekeeper/internal/service"
)

const (
	callerIDKey      = "caller_id"
	callerSubjectKey = "caller_subject"
)

// TokenVerifier es la parte de service.TokenCodec que usa el gate.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (service.Subject, error)
}

// AuthGate valida el token de la cabecera y fija la identidad del llamador en
// el contexto. El motivo concreto del rechazo solo se registra en el log.
func AuthGate(verifier TokenVerifier, logger *zap.Logger, header string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if verifier == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "auth not configured"})
			return
		}

		token := extractToken(c, header)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msgUnauthenticated})
			return
		}

		subject, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Info("token rejected",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msgUnauthenticated})
			return
		}

		c.Set(callerIDKey, subject.UserID)
		c.Set(callerSubjectKey, subject)
		c.Next()
	}
}

// CallerID devuelve el id verificado por AuthGate, o "" si no paso por el gate.
func CallerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

func callerSubject(c *gin.Context) (service.Subject, bool) {
	val, ok := c.Get(callerSubjectKey)
	if !ok {
		return service.Subject{}, false
	}
	subject, ok := val.(service.Subject)
	return subject, ok
}

func extractToken(c *gin.Context, header string) string {
	if header != "" {
		if token := strings.TrimSpace(c.GetHeader(header)); token != "" {
			return token
		}
	}
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authz) > len("bearer ") && strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
