package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"adda-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /users/:id ("me" for the signed-in user)
	r.GET("/users/:id", h.GetProfile)
	// GET /leaderboard
	r.GET("/leaderboard", h.GetLeaderboard)
}

// ---------- handlers ----------

func (h *Handler) GetProfile(c *gin.Context) {
	res, err := h.svc.Profile(c.Request.Context(), auth.TargetUserID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	res, err := h.svc.Leaderboard(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorFromErr(err error) errorDTO {
	var e errorDTO
	e.Error.Code = CodeInternal
	var api *APIError
	if errors.As(err, &api) {
		e.Error.Code, e.Error.Message = api.Code, api.Message
	} else {
		e.Error.Message = err.Error()
	}
	return e
}
