package attendance

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adda-backend/internal/platform/auth"
)

// multipart framing allowance on top of the photo itself
const formOverhead = 1 << 20

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /attendance (multipart, field "photo")
	r.POST("/attendance", h.Submit)
	// GET /attendance/today
	r.GET("/attendance/today", h.Today)
	// GET /attendance/stats?from=&to=&limit=
	r.GET("/attendance/stats", h.Stats)

	// GET /users/:id/attendance ("me" for the signed-in user)
	r.GET("/users/:id/attendance", h.History)
	// GET /users/:id/attendance.csv
	r.GET("/users/:id/attendance.csv", h.ExportCSV)
}

// ---------- handlers ----------

// POST /attendance
func (h *Handler) Submit(c *gin.Context) {
	photo, err := h.readPhoto(c)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), auth.UserID(c), photo)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/api/v1/users/"+res.UserID+"/attendance")
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Today(c *gin.Context) {
	res, err := h.svc.TodayStatus(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) History(c *gin.Context) {
	res, err := h.svc.History(c.Request.Context(), auth.TargetUserID(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	userID := auth.TargetUserID(c)
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), userID, &buf); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "attendance-" + userID + ".csv"}))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) Stats(c *gin.Context) {
	req := StatsRequest{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: parseIntDefault(c.Query("limit"), DefaultStatsLimit),
	}
	rows, err := h.svc.Stats(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": req.From, "to": req.To, "items": rows})
}

// ---------- helpers ----------

func (h *Handler) readPhoto(c *gin.Context) (Photo, error) {
	limit := h.svc.MaxUploadBytes()
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || (limit > 0 && c.Request.ContentLength > limit+formOverhead) {
			return Photo{}, ErrTooLarge("photo is too large")
		}
		return Photo{}, ErrInvalid("multipart field \"photo\" is required")
	}
	if limit > 0 && fh.Size > limit {
		return Photo{}, ErrTooLarge("photo is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return Photo{}, ErrInternal(err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Photo{}, ErrInternal(err.Error())
	}
	return Photo{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	var api *APIError
	if errors.As(err, &api) {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
