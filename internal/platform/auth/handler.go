package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"adda-backend/internal/platform/logger"
)

type AuthHandler struct{ svc AuthService }

func RegisterRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/signout", h.SignOut)
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "invalid request"))
		return
	}

	token, userID, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrDisabled):
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "email or password is incorrect"))
		return
	case err != nil:
		logger.ErrorContext(c.Request.Context(), "login failed", "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "login failed"))
		return
	}

	s := sessions.Default(c)
	s.Set(sessionUserIDKey, userID)
	if err := s.Save(); err != nil {
		logger.WarnContext(c.Request.Context(), "session save failed", "err", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": userID,
		"message": "Login successful",
	})
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "invalid request"))
		return
	}

	id, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", ve.Msg))
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, errorBody("CONFLICT", "email already registered"))
		default:
			logger.ErrorContext(c.Request.Context(), "register failed", "err", err)
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "register failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": id, "message": "registered"})
}

// POST /auth/signout clears the cookie session. Browsers post the sign-out
// form, so they get redirected to the login page; API clients get 204.
func (h *AuthHandler) SignOut(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		logger.WarnContext(c.Request.Context(), "session clear failed", "err", err)
	}

	if c.ContentType() == "application/x-www-form-urlencoded" {
		c.Redirect(http.StatusSeeOther, "/auth/login")
		return
	}
	c.Status(http.StatusNoContent)
}

type errorDTO struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}
