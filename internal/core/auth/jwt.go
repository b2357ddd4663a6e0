package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const leeway = 60 * time.Second

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"` // student / alumni / admin
	jwt.RegisteredClaims
}

// JWTer HS256 签发与校验。Now 为空时用 time.Now
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Issue 返回 token 及其过期时间
func (j *JWTer) Issue(uid, role string) (string, time.Time, error) {
	if uid == "" || role == "" {
		return "", time.Time{}, errors.New("issue token: uid and role required")
	}
	now := j.now()
	exp := now.Add(j.TTL)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, exp, nil
}

func (j *JWTer) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected alg %v", t.Header["alg"])
	}
	return j.Secret, nil
}

// Parse 校验签名、签发方和有效期；uid/role 缺失视为无效
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	c := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, c, j.keyFunc,
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.UID == "" || c.Role == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
