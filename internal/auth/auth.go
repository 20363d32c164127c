// Package auth verifies the bearer tokens issued by the identity service.
// Token issuance itself lives outside this repository; Sign exists for local
// tooling and tests.
package auth

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

const roleClaim = "role"

var ErrInvalidToken = errors.New("invalid token")

type Principal struct {
	ID   string
	Role Role
}

func (p Principal) Is(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type Verifier struct {
	key []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{key: []byte(secret)}
}

// Verify checks the HS256 signature and the exp/nbf claims.
func (v *Verifier) Verify(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}
	tok, err := jwt.Parse([]byte(raw), jwt.WithVerify(jwa.HS256, v.key), jwt.WithValidate(true))
	if err != nil {
		return Principal{}, errors.Mark(errors.Wrap(err, "parse token"), ErrInvalidToken)
	}
	p := Principal{ID: tok.Subject()}
	if v, ok := tok.Get(roleClaim); ok {
		if s, ok := v.(string); ok {
			p.Role = Role(s)
		}
	}
	if p.ID == "" {
		return Principal{}, errors.Mark(errors.New("token has no subject"), ErrInvalidToken)
	}
	switch p.Role {
	case RoleCustomer, RoleSeller, RoleAdmin:
	default:
		return Principal{}, errors.Mark(errors.Newf("unknown role %q", p.Role), ErrInvalidToken)
	}
	return p, nil
}

func (v *Verifier) Sign(p Principal, ttl time.Duration) (string, error) {
	tok := jwt.New()
	now := time.Now()
	if err := tok.Set(jwt.SubjectKey, p.ID); err != nil {
		return "", err
	}
	if err := tok.Set(roleClaim, string(p.Role)); err != nil {
		return "", err
	}
	if err := tok.Set(jwt.IssuedAtKey, now); err != nil {
		return "", err
	}
	if err := tok.Set(jwt.ExpirationKey, now.Add(ttl)); err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwa.HS256, v.key)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return string(signed), nil
}
