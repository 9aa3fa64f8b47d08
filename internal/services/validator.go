package services

import (
	"fmt"
	"mime"
	"strings"

	"eventalbum/internal/domain"
)

// DefaultMaxMediaBytes is the upload ceiling used when none is configured (10 MiB).
const DefaultMaxMediaBytes int64 = 10 << 20

// DefaultMediaTypes is the still-image allow-list.
var DefaultMediaTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// MediaValidator checks a single upload against the type/size policy. It does no I/O.
type MediaValidator struct {
	allowed  map[string]struct{}
	maxBytes int64
}

// NewMediaValidator returns a validator accepting DefaultMediaTypes plus extraTypes,
// refusing files larger than maxBytes (DefaultMaxMediaBytes when maxBytes <= 0).
func NewMediaValidator(maxBytes int64, extraTypes ...string) *MediaValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMediaBytes
	}
	allowed := make(map[string]struct{}, len(DefaultMediaTypes)+len(extraTypes))
	for _, t := range DefaultMediaTypes {
		allowed[t] = struct{}{}
	}
	for _, t := range extraTypes {
		if t = normalizeMediaType(t); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &MediaValidator{allowed: allowed, maxBytes: maxBytes}
}

// MaxBytes returns the configured size ceiling.
func (v *MediaValidator) MaxBytes() int64 { return v.maxBytes }

// Validate returns nil when f is acceptable, or a *domain.RejectionError naming the reason.
func (v *MediaValidator) Validate(f domain.FileInfo) error {
	mt := normalizeMediaType(f.MimeType)
	if _, ok := v.allowed[mt]; !ok {
		return &domain.RejectionError{
			Reason:  domain.RejectUnsupportedType,
			Message: fmt.Sprintf("unsupported file type %q", f.MimeType),
		}
	}
	if f.Size > v.maxBytes {
		return &domain.RejectionError{
			Reason:  domain.RejectTooLarge,
			Message: fmt.Sprintf("file is %d bytes, the limit is %d bytes", f.Size, v.maxBytes),
		}
	}
	return nil
}

// normalizeMediaType lowercases a content type and drops its parameters.
func normalizeMediaType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
