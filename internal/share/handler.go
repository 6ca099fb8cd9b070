package share

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adda-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

type LinkResponse struct {
	UserID string `json:"user_id"`
	URL    string `json:"url"`
}

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /users/:id/share
	r.GET("/users/:id/share", h.Link)
	// GET /users/:id/share.png?size=
	r.GET("/users/:id/share.png", h.QR)
}

func (h *Handler) Link(c *gin.Context) {
	id := auth.TargetUserID(c)
	link, err := h.svc.ProfileURL(id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkResponse{UserID: id, URL: link})
}

func (h *Handler) QR(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.svc.QRCode(auth.TargetUserID(c), size)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func writeErr(c *gin.Context, err error) {
	code, status := "INTERNAL", http.StatusInternalServerError
	if errors.Is(err, ErrInvalidUser) {
		code, status = "INVALID_ARGUMENT", http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}
