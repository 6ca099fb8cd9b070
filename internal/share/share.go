// Package share builds the public profile link users hand out, as a URL or a
// scannable QR code.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

var ErrInvalidUser = errors.New("share: user id is required")

type Service struct {
	base string
}

// NewService takes the public site root, e.g. https://adda.example.
func NewService(publicBaseURL string) (*Service, error) {
	u, err := url.Parse(strings.TrimSpace(publicBaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("share: invalid public base url %q", publicBaseURL)
	}
	return &Service{base: strings.TrimRight(u.String(), "/")}, nil
}

// ProfileURL is "<base>/profile/<id>".
func (s *Service) ProfileURL(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidUser
	}
	return s.base + "/profile/" + url.PathEscape(userID), nil
}

// QRCode renders the profile URL as a PNG. size is clamped to the supported range.
func (s *Service) QRCode(userID string, size int) ([]byte, error) {
	link, err := s.ProfileURL(userID)
	if err != nil {
		return nil, err
	}
	switch {
	case size <= 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
