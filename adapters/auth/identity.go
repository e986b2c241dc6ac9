package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lotbid/auction"
	"lotbid/models"
)

var (
	ErrMissingToken = fmt.Errorf("missing bearer token: %w", auction.ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("invalid bearer token: %w", auction.ErrUnauthorized)
	ErrInsufficient = fmt.Errorf("insufficient role: %w", auction.ErrForbidden)
)

// Identity 是通過驗證的呼叫者
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Verifier 驗證 token 並取出身份
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// BearerToken 從 Authorization header 取出 token
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Chain 依序嘗試多個 Verifier，第一個成功的結果為準
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}
	errs := make([]error, 0, len(c))
	for _, verifier := range c {
		identity, err := verifier.Verify(ctx, rawToken)
		if err == nil {
			return identity, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrInvalidToken
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidToken, errors.Join(errs...))
}
