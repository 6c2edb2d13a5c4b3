package service

import (
	"context"
	"testing"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"
)

func newGuardFixture(t *testing.T) (*GuardService, repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	now := time.Now().UTC()
	for _, u := range []model.User{
		{UID: "agent-1", Email: "agent@betx.io", Role: model.RoleAgent, Status: model.StatusActive},
		{UID: "admin-1", Email: "admin@betx.io", Role: model.RoleAdmin, Status: model.StatusActive},
		{UID: "sub-1", Email: "sub@betx.io", Role: model.RoleSubAdmin, Status: model.StatusActive},
		{UID: "sub-2", Email: "off@betx.io", Role: model.RoleSubAdmin, Status: model.StatusSuspended},
	} {
		u := u
		u.CreatedAt, u.UpdatedAt = now, now
		if err := users.CreateUser(context.Background(), &u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	identity := &fakeIdentity{tokens: map[string]*model.Identity{
		"tok-agent": {UID: "agent-1", Email: "agent@betx.io"},
		"tok-admin": {UID: "admin-1", Email: "admin@betx.io"},
		"tok-sub":   {UID: "sub-1", Email: "sub@betx.io"},
		"tok-off":   {UID: "sub-2", Email: "off@betx.io"},
		"tok-ghost": {UID: "ghost", Email: "ghost@betx.io"},
	}}
	return NewGuardService(identity, users, metrics.New(), newTestLogger()), users
}

func TestGuard_Authenticate(t *testing.T) {
	guard, _ := newGuardFixture(t)
	ctx := context.Background()

	tests := []struct {
		header  string
		wantErr string
	}{
		{"", "Unauthorized: No token provided"},
		{"Basic abc", "Unauthorized: No token provided"},
		{"Bearer ", "Unauthorized: No token provided"},
		{"Bearer expired", "Unauthorized: Invalid or expired token"},
		{"Bearer tok-admin", ""},
	}
	for _, tt := range tests {
		id, err := guard.Authenticate(ctx, tt.header)
		if tt.wantErr == "" {
			if err != nil || id.UID != "admin-1" {
				t.Errorf("%q: got %v, %v", tt.header, id, err)
			}
			continue
		}
		assertKind(t, err, apperr.KindUnauthorized)
		if apperr.MessageOf(err) != tt.wantErr {
			t.Errorf("%q: message = %q", tt.header, apperr.MessageOf(err))
		}
	}
}

func TestGuard_Authorize(t *testing.T) {
	guard, _ := newGuardFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		uid     string
		roles   RoleSet
		wantErr string
	}{
		{"agent on agent routes", "agent-1", AgentRoles, ""},
		{"admin on admin routes", "admin-1", AdminRoles, ""},
		{"subadmin on admin routes", "sub-1", AdminRoles, ""},
		{"agent on admin routes", "agent-1", AdminRoles, "Forbidden: Insufficient role"},
		{"admin on agent routes", "admin-1", AgentRoles, "Forbidden: Insufficient role"},
		{"suspended subadmin", "sub-2", AdminRoles, "Forbidden: Account suspended"},
		{"no profile", "ghost", AdminRoles, "Forbidden: User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := guard.Authorize(ctx, &model.Identity{UID: tt.uid}, tt.roles)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Authorize: %v", err)
				}
				if p.UID != tt.uid || p.Status != model.StatusActive {
					t.Errorf("principal = %+v", p)
				}
				return
			}
			assertKind(t, err, apperr.KindForbidden)
			if apperr.MessageOf(err) != tt.wantErr {
				t.Errorf("message = %q", apperr.MessageOf(err))
			}
		})
	}
}

func TestGuard_Narrow(t *testing.T) {
	guard, _ := newGuardFixture(t)

	if _, err := guard.Narrow(model.Principal{UID: "admin-1", Role: model.RoleAdmin}, SuperAdminRoles); err != nil {
		t.Fatalf("admin narrow: %v", err)
	}
	_, err := guard.Narrow(model.Principal{UID: "sub-1", Role: model.RoleSubAdmin}, SuperAdminRoles)
	assertKind(t, err, apperr.KindForbidden)
	if apperr.MessageOf(err) != "Forbidden: Super Admin access required" {
		t.Errorf("message = %q", apperr.MessageOf(err))
	}
}
