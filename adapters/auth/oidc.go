package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	"lotbid/models"
)

// 參考https://auth0.com/docs/get-started/apis/scopes/openid-connect-scopes
type oidcProfile struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type oidcOptions struct {
	roleClaim  string
	adminValue string
}

type OIDCOption func(*oidcOptions)

// WithOIDCRoleClaim 設置讀取角色的 claim 名稱，值可以是字串或字串陣列
func WithOIDCRoleClaim(claim string) OIDCOption {
	return func(o *oidcOptions) {
		o.roleClaim = claim
	}
}

// WithOIDCAdminValue 設置代表管理員的角色值
func WithOIDCAdminValue(value string) OIDCOption {
	return func(o *oidcOptions) {
		o.adminValue = value
	}
}

// OIDCVerifier 驗證外部 OpenID Provider 簽發的 ID token
type OIDCVerifier struct {
	issuer   string
	verifier *oidc.IDTokenVerifier
	options  oidcOptions
}

var _ Verifier = (*OIDCVerifier)(nil)

// NewOIDCVerifier 透過 discovery 取得 provider 的金鑰
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string, opts ...OIDCOption) (*OIDCVerifier, error) {
	const op = "NewOIDCVerifier"
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create provider, err=%w", op, err)
	}
	return newOIDCVerifier(issuerURL, provider.Verifier(&oidc.Config{ClientID: clientID}), opts...), nil
}

// NewOIDCVerifierFromKeySet 以指定的金鑰驗證，不經過 discovery
func NewOIDCVerifierFromKeySet(issuerURL, clientID string, keySet oidc.KeySet, opts ...OIDCOption) *OIDCVerifier {
	return newOIDCVerifier(issuerURL, oidc.NewVerifier(issuerURL, keySet, &oidc.Config{ClientID: clientID}), opts...)
}

func newOIDCVerifier(issuer string, verifier *oidc.IDTokenVerifier, opts ...OIDCOption) *OIDCVerifier {
	options := oidcOptions{
		roleClaim:  "groups",
		adminValue: models.RoleAdmin,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &OIDCVerifier{issuer: issuer, verifier: verifier, options: options}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var profile oidcProfile
	if err := idToken.Claims(&profile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	name := profile.Name
	if name == "" {
		name = profile.Nickname
	}
	if name == "" {
		name = profile.Email
	}
	return &Identity{
		UserID: v.subjectID(idToken.Subject),
		Name:   name,
		Role:   v.role(raw[v.options.roleClaim]),
	}, nil
}

// subjectID 將 provider 的 sub 轉成使用者 ID
// sub 不是 UUID 時以 issuer + sub 產生固定的 UUID
func (v *OIDCVerifier) subjectID(subject string) uuid.UUID {
	if id, err := uuid.Parse(subject); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(v.issuer+"#"+subject))
}

func (v *OIDCVerifier) role(claim any) string {
	switch value := claim.(type) {
	case string:
		if value == v.options.adminValue {
			return models.RoleAdmin
		}
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok && s == v.options.adminValue {
				return models.RoleAdmin
			}
		}
	}
	return models.RoleUser
}
