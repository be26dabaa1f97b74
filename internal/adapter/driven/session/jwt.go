package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

var _ driven.SessionProvider = (*JWTProvider)(nil)

// Claims is the token payload. The principal is read from principal_id, or
// from sub when principal_id is absent. Only HS256 tokens are accepted.
type Claims struct {
	PrincipalID int64 `json:"principal_id"`
	jwt.StandardClaims
}

// JWTProvider validates bearer tokens signed with a shared secret.
type JWTProvider struct {
	secret []byte
	now    func() time.Time
}

// NewJWTProvider creates a JWTProvider for the given HMAC secret.
func NewJWTProvider(secret []byte) *JWTProvider {
	return &JWTProvider{secret: secret, now: time.Now}
}

// Issue signs a token for principalID that expires after ttl.
func (p *JWTProvider) Issue(principalID int64, ttl time.Duration) (string, error) {
	now := p.now()
	claims := &Claims{
		PrincipalID: principalID,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(principalID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// PrincipalID validates the Authorization bearer token and returns the
// principal it names.
func (p *JWTProvider) PrincipalID(r *http.Request) (int64, error) {
	auth := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || tokenStr == "" {
		return 0, driven.ErrNoSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return 0, fmt.Errorf("%w: token expired", driven.ErrNoSession)
		}
		return 0, fmt.Errorf("%w: %w", driven.ErrNoSession, err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("%w: invalid token", driven.ErrNoSession)
	}

	id, err := claims.principal()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", driven.ErrNoSession, err)
	}
	return id, nil
}

// principal resolves the principal from principal_id and sub. When both are
// set they must agree.
func (c *Claims) principal() (int64, error) {
	id := c.PrincipalID
	if c.Subject != "" {
		sub, err := strconv.ParseInt(c.Subject, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed sub claim %q", c.Subject)
		}
		if id != 0 && id != sub {
			return 0, errors.New("sub and principal_id claims disagree")
		}
		id = sub
	}
	if id <= 0 {
		return 0, errors.New("token names no principal")
	}
	return id, nil
}
