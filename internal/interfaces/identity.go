package interfaces

import (
	"context"

	"BetX/internal/model"
)

// IdentityProvider 外部身份提供方：校验 Bearer token、创建账号
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, token string) (*model.Identity, error)
	CreateUser(ctx context.Context, email, password, displayName string) (uid string, err error)
}
