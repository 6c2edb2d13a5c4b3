package model

import "time"

// 账号角色
const (
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
	RoleSubAdmin = "subadmin"
)

// 账号状态
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User 账号资料（uid 与身份提供方一致）
type User struct {
	UID        string     `gorm:"column:uid;primaryKey;type:varchar(128)" json:"uid"`
	Email      string     `gorm:"column:email;type:varchar(256);index" json:"email"`
	Name       string     `gorm:"column:name;type:varchar(128)" json:"name,omitempty"`
	Role       string     `gorm:"column:role;type:varchar(16);not null;index" json:"role"`
	Status     string     `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	AgentLimit int        `gorm:"column:agent_limit;type:int;default:0" json:"agentLimit"`
	CreatedAt  time.Time  `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
	LastLogin  *time.Time `gorm:"column:last_login;type:timestamp" json:"lastLogin,omitempty"`
}

// Client 代理名下的客户
type Client struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	AgentUID     string    `gorm:"column:agent_uid;type:varchar(128);not null;index" json:"agentUid"`
	Code         string    `gorm:"column:code;type:varchar(16);not null" json:"code"`
	Name         string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Mobile       string    `gorm:"column:mobile;type:varchar(32);not null" json:"mobile"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	ClientLimit  float64   `gorm:"column:client_limit;type:numeric(18,2);default:0" json:"clientLimit"`
	Status       string    `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp" json:"createdAt"`
}

func (User) TableName() string   { return "users" }
func (Client) TableName() string { return "clients" }

// Identity 身份提供方校验 token 后得到的身份
type Identity struct {
	UID   string
	Email string
}

// Principal 通过角色校验的请求主体，由 handler 显式传给 service
type Principal struct {
	UID    string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
