package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"BetX/internal/apperr"
	"BetX/internal/config"
	"BetX/internal/interfaces"
	"BetX/internal/model"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Auth Firebase Admin 身份提供方
type Auth struct {
	client *auth.Client
}

// NewAuth 用服务账号凭据初始化 Firebase Auth 客户端
func NewAuth(ctx context.Context, cfg config.FirebaseConfig) (interfaces.IdentityProvider, error) {
	if cfg.ProjectID == "" || cfg.PrivateKey == "" || cfg.ClientEmail == "" {
		return nil, fmt.Errorf("缺少 Firebase 凭据：请配置 FIREBASE_PROJECT_ID、FIREBASE_PRIVATE_KEY、FIREBASE_CLIENT_EMAIL")
	}

	// .env 中的私钥换行以字面量 \n 保存
	creds, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"private_key":  strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"client_email": cfg.ClientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase 失败: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase Auth 失败: %w", err)
	}
	return &Auth{client: client}, nil
}

func (a *Auth) VerifyIDToken(ctx context.Context, token string) (*model.Identity, error) {
	decoded, err := a.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Unauthorized: Invalid or expired token", err)
	}
	email, _ := decoded.Claims["email"].(string)
	return &model.Identity{UID: decoded.UID, Email: email}, nil
}

func (a *Auth) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := a.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", apperr.Validation("Email already in use")
		}
		return "", fmt.Errorf("创建 Firebase 用户失败: %w", err)
	}
	return record.UID, nil
}
