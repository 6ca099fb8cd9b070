package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"adda-backend/internal/attendance"
	"adda-backend/internal/capture"
	"adda-backend/internal/share"
	"adda-backend/internal/users"
)

// RemoteError is an error response from the server. Message is shown to the
// user as is.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// IsAlreadyMarked reports whether the server refused a second check-in today.
func IsAlreadyMarked(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Code == string(attendance.CodeAlreadyMarked)
}

// Client talks to the attendance API.
type Client struct {
	base  string
	http  *http.Client
	token string
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Login exchanges credentials for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "application/json", bytes.NewReader(body), &res); err != nil {
		return "", err
	}
	c.token = res.Token
	return res.UserID, nil
}

// Submit uploads the photo as today's check-in.
func (c *Client) Submit(ctx context.Context, photo *capture.Artifact) (attendance.AttendanceResponse, error) {
	var res attendance.AttendanceResponse
	if photo == nil {
		return res, ErrNoPhoto
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, photo.Name()))
	h.Set("Content-Type", photo.ContentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return res, err
	}
	if _, err := part.Write(photo.Bytes()); err != nil {
		return res, err
	}
	if err := mw.Close(); err != nil {
		return res, err
	}
	err = c.do(ctx, http.MethodPost, "/api/v1/attendance", mw.FormDataContentType(), &buf, &res)
	return res, err
}

func (c *Client) Today(ctx context.Context) (attendance.TodayResponse, error) {
	var res attendance.TodayResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/attendance/today", "", nil, &res)
	return res, err
}

func (c *Client) Leaderboard(ctx context.Context) (users.LeaderboardResponse, error) {
	var res users.LeaderboardResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/leaderboard", "", nil, &res)
	return res, err
}

func (c *Client) Profile(ctx context.Context, userID string) (users.ProfileResponse, error) {
	var res users.ProfileResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(orMe(userID)), "", nil, &res)
	return res, err
}

func (c *Client) ShareLink(ctx context.Context, userID string) (share.LinkResponse, error) {
	var res share.LinkResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(orMe(userID))+"/share", "", nil, &res)
	return res, err
}

// SignOut ends the server session and forgets the token.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/signout", "", nil, nil)
	c.token = ""
	return err
}

func orMe(id string) string {
	if id == "" {
		return "me"
	}
	return id
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	re := &RemoteError{Status: resp.StatusCode}
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		re.Code, re.Message = body.Error.Code, body.Error.Message
		return re
	}
	re.Message = strings.TrimSpace(string(raw))
	if re.Message == "" {
		re.Message = resp.Status
	}
	return re
}
