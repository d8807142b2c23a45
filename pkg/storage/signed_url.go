package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token errors.
var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadToken is the verified content of a signed snapshot link.
type DownloadToken struct {
	Domain    string
	Key       string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed snapshot download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token granting download of key within domain until the TTL elapses.
// Format: <domain>.<unix expiry>.<base64url key>.<hex hmac>.
func (s *SignedURLSigner) Sign(domain, key string) (string, time.Time, error) {
	if domain == "" || key == "" || strings.Contains(domain, ".") {
		return "", time.Time{}, fmt.Errorf("domain and key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	token := strings.Join([]string{domain, ts, encodedKey, s.mac(domain, ts, encodedKey)}, ".")
	return token, expiresAt, nil
}

// Verify validates signature and expiry and returns the embedded reference.
func (s *SignedURLSigner) Verify(token string) (DownloadToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadToken{}, ErrTokenInvalid
	}
	domain, ts, encodedKey, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.mac(domain, ts, encodedKey)), []byte(signature)) {
		return DownloadToken{}, ErrTokenInvalid
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return DownloadToken{}, ErrTokenInvalid
	}
	rawKey, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return DownloadToken{}, ErrTokenInvalid
	}
	expiresAt := time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return DownloadToken{}, ErrTokenExpired
	}
	return DownloadToken{Domain: domain, Key: string(rawKey), ExpiresAt: expiresAt}, nil
}

func (s *SignedURLSigner) mac(domain, ts, encodedKey string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(domain + "|" + ts + "|" + encodedKey))
	return hex.EncodeToString(mac.Sum(nil))
}
