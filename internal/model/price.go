package model

import (
	"database/sql/driver"
	"math"

	"BetX/internal/apperr"

	"github.com/shopspring/decimal"
)

// Price 十进制赔率，构造时保证为正数
type Price struct {
	decimal.Decimal
}

// DefaultOdd 无外部赔率时的默认赔率
var DefaultOdd = Price{decimal.RequireFromString("1.90")}

// NewPrice 校验并构造赔率，保留4位小数（与 numeric(10,4) 对齐）
func NewPrice(v float64) (Price, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Price{}, apperr.Validation("Odd must be a positive number")
	}
	// 先舍入再判正，避免极小正数被存成 0
	d := decimal.NewFromFloat(v).Round(4)
	if !d.IsPositive() {
		return Price{}, apperr.Validation("Odd must be a positive number")
	}
	return Price{d}, nil
}

// MustPrice 仅用于常量场景
func MustPrice(s string) Price {
	return Price{decimal.RequireFromString(s)}
}

func (p Price) Float64() float64 {
	return p.InexactFloat64()
}

// MarshalJSON 前端按数字读取赔率
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

func (p Price) Value() (driver.Value, error) {
	return p.Decimal.Value()
}

func (p *Price) Scan(value interface{}) error {
	return p.Decimal.Scan(value)
}
