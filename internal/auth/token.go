package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the application payload carried by a verified token.
// Roles keeps the raw claim shape; normalization happens when the
// principal is built from the stored record, not from the token.
type TokenClaims struct {
	UserID         string
	Roles          any
	OrganizationID string
}

// TokenVerifier validates compact signed tokens against a shared
// secret. Only HS256 is accepted; restricting the algorithm list
// prevents confusion attacks where an asymmetric-signed token is
// verified with the shared secret as an HMAC key.
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewTokenVerifier builds a verifier for the given shared secret.
// issuer is optional; when set, tokens must carry a matching iss claim.
func NewTokenVerifier(secret []byte, issuer string, leeway time.Duration) *TokenVerifier {
	return &TokenVerifier{secret: secret, issuer: issuer, leeway: leeway}
}

// Verify checks signature and expiry and extracts the subject claims.
// Failures map onto exactly two cases: ErrTokenExpired for a
// structurally valid but expired token, ErrInvalidToken for everything
// else.
func (v *TokenVerifier) Verify(token string) (TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if v.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(v.leeway))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims := TokenClaims{}
	if sub, _ := mc["userId"].(string); sub != "" {
		claims.UserID = sub
	} else if sub, err := mc.GetSubject(); err == nil {
		claims.UserID = sub
	}
	if claims.UserID == "" {
		return TokenClaims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims.Roles = mc["roles"]
	claims.OrganizationID, _ = mc["organizationId"].(string)
	return claims, nil
}

// TokenIssuer mints the tokens the verifier accepts. Login hands the
// signed token to the client and also stores it in the session so both
// credential sources resolve to the same identity.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, issuer: issuer, ttl: ttl}
}

func (i *TokenIssuer) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    p.ID,
		"userId": p.ID,
		"roles":  p.Roles.Slice(),
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(i.ttl).Unix(),
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}
	if p.OrganizationID != "" {
		claims["organizationId"] = p.OrganizationID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
