package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lotbid/models"
)

// Claims 是平台簽發的 access token 內容
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type jwtOptions struct {
	issuer   string
	audience string
	ttl      time.Duration
	clock    func() time.Time
}

type JWTOption func(*jwtOptions)

// WithJWTIssuer 設置 iss，驗證時也會檢查
func WithJWTIssuer(issuer string) JWTOption {
	return func(o *jwtOptions) {
		o.issuer = issuer
	}
}

// WithJWTAudience 設置 aud，驗證時也會檢查
func WithJWTAudience(audience string) JWTOption {
	return func(o *jwtOptions) {
		o.audience = audience
	}
}

// WithJWTTTL 設置簽發 token 的有效時間
func WithJWTTTL(ttl time.Duration) JWTOption {
	return func(o *jwtOptions) {
		o.ttl = ttl
	}
}

// WithJWTClock 設置時間來源 (主要用於測試)
func WithJWTClock(clock func() time.Time) JWTOption {
	return func(o *jwtOptions) {
		o.clock = clock
	}
}

// JWTVerifier 驗證以 HS256 簽章的 access token
type JWTVerifier struct {
	secret  []byte
	options jwtOptions
}

var _ Verifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret []byte, opts ...JWTOption) (*JWTVerifier, error) {
	const op = "NewJWTVerifier"
	if len(secret) < 32 {
		return nil, fmt.Errorf("[%s] Secret must be at least 32 bytes", op)
	}
	options := jwtOptions{
		ttl:   time.Hour,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &JWTVerifier{secret: secret, options: options}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.options.clock),
	}
	if v.options.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.options.issuer))
	}
	if v.options.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.options.audience))
	}
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	return &Identity{UserID: userID, Name: claims.Name, Role: role}, nil
}

// MintToken 以同一把金鑰簽發 access token
func (v *JWTVerifier) MintToken(identity Identity) (string, error) {
	const op = "MintToken"
	now := v.options.clock()
	claims := Claims{
		Name: identity.Name,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			Issuer:    v.options.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.options.ttl)),
		},
	}
	if v.options.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.options.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign token, err=%w", op, err)
	}
	return signed, nil
}
