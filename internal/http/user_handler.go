package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notekeeper/internal/domain"
	"notekeeper/internal/service"
)

// TokenIssuer es la parte de service.TokenCodec que usan los endpoints de auth.
type TokenIssuer interface {
	Issue(user domain.User) (service.Token, error)
	Revoke(ctx context.Context, subject service.Subject) error
}

// UserHandler mantiene dependencias para endpoints de autenticacion.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	tokens   TokenIssuer
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, tokens TokenIssuer) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		tokens:   tokens,
	}
}

// CreateUser maneja POST /api/auth/createuser.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Handle   string `json:"handle"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create user request", zap.Error(err))
		badRequest(c, "body", "must be a JSON object")
		return
	}
	if req.Handle == "" {
		req.Handle = req.Name
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Handle:   req.Handle,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, "create user", err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(c, h.logger, "issue token", err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "authToken": token.Value})
}

// Login maneja POST /api/auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		badRequest(c, "body", "must be a JSON object")
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(c, h.logger, "issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "authToken": token.Value})
}

// GetUser maneja GET /api/auth/getuser.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userServ.GetByID(c.Request.Context(), CallerID(c))
	if err != nil {
		writeError(c, h.logger, "get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout maneja POST /api/auth/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	subject, ok := callerSubject(c)
	if !ok {
		writeError(c, h.logger, "logout", service.ErrUnauthenticated)
		return
	}
	if err := h.tokens.Revoke(c.Request.Context(), subject); err != nil {
		writeError(c, h.logger, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}
