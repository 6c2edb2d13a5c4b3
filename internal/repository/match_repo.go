package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchFilter 列表筛选条件
type MatchFilter struct {
	Status string // upcoming / live / ...
	Source string // api / manual
}

// SettleParams 结算写入参数
type SettleParams struct {
	MatchID           string
	MarketID          string
	WinnerSelectionID string
	SettledBy         string
	At                time.Time
}

// MatchRepository 赛事/盘口/选项的存储接口。
// 多文档写入（CreateMatch、CreateMarket、SettleMarket 等）在同一事务内提交，要么全部生效要么全部回滚。
type MatchRepository interface {
	// GetMatch 查询赛事，不存在返回 NotFound
	GetMatch(ctx context.Context, matchID string) (*model.Match, error)
	// ListMatches 按过滤条件分页查询赛事（开赛时间倒序）
	ListMatches(ctx context.Context, filter MatchFilter, page, pageSize int) ([]*model.Match, int64, error)
	// ListOddsLinkedMatches 已关联赔率源事件且未结束的赛事
	ListOddsLinkedMatches(ctx context.Context, limit int) ([]*model.Match, error)
	GetMarket(ctx context.Context, matchID, marketID string) (*model.Market, error)
	ListMarkets(ctx context.Context, matchID string) ([]*model.Market, error)
	GetSelection(ctx context.Context, matchID, marketID, selectionID string) (*model.Selection, error)
	ListSelections(ctx context.Context, matchID, marketID string) ([]*model.Selection, error)
	ListSelectionsByMatch(ctx context.Context, matchID string) ([]*model.Selection, error)

	// CreateMatch 赛事不存在时写入赛事+默认盘口+选项；赛事已存在则不写任何数据并返回 false
	CreateMatch(ctx context.Context, match *model.Match, market *model.Market, selections []*model.Selection) (bool, error)
	// CreateMarket 写入盘口及其初始选项
	CreateMarket(ctx context.Context, market *model.Market, selections []*model.Selection) error
	// UpdateMarketStatus 修改未关闭盘口的状态
	UpdateMarketStatus(ctx context.Context, matchID, marketID, status string, at time.Time) error
	// AddSelection 仅当盘口未关闭时新增选项
	AddSelection(ctx context.Context, selection *model.Selection) error
	// UpdateSelectionOdd 仅当盘口未关闭时更新赔率
	UpdateSelectionOdd(ctx context.Context, matchID, marketID, selectionID string, odd model.Price, at time.Time) error
	// SettleMarket 关闭盘口并标记选项输赢；盘口已关闭时返回 InvalidState
	SettleMarket(ctx context.Context, p SettleParams) error
}

type matchRepository struct {
	db *gorm.DB
}

var errMatchExists = errors.New("match already exists")

// NewMatchRepository 创建 MatchRepository 实例
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func (r *matchRepository) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	var m model.Match
	if err := r.db.WithContext(ctx).Where("id = ?", matchID).First(&m).Error; err != nil {
		return nil, notFound(err, "Match not found")
	}
	return &m, nil
}

func (r *matchRepository) ListMatches(ctx context.Context, filter MatchFilter, page, pageSize int) ([]*model.Match, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&model.Match{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var matches []*model.Match
	if err := db.
		Order("start_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&matches).Error; err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

func (r *matchRepository) ListOddsLinkedMatches(ctx context.Context, limit int) ([]*model.Match, error) {
	var matches []*model.Match
	if err := r.db.WithContext(ctx).
		Where("external_odds_event_id IS NOT NULL AND status <> ?", model.MatchStatusFinished).
		Order("start_time ASC").
		Limit(limit).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) GetMarket(ctx context.Context, matchID, marketID string) (*model.Market, error) {
	var m model.Market
	if err := r.db.WithContext(ctx).
		Where("match_id = ? AND id = ?", matchID, marketID).
		First(&m).Error; err != nil {
		return nil, notFound(err, "Market not found")
	}
	return &m, nil
}

func (r *matchRepository) ListMarkets(ctx context.Context, matchID string) ([]*model.Market, error) {
	var markets []*model.Market
	if err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (r *matchRepository) GetSelection(ctx context.Context, matchID, marketID, selectionID string) (*model.Selection, error) {
	var s model.Selection
	if err := r.db.WithContext(ctx).
		Where("match_id = ? AND market_id = ? AND id = ?", matchID, marketID, selectionID).
		First(&s).Error; err != nil {
		return nil, notFound(err, "Selection not found")
	}
	return &s, nil
}

func (r *matchRepository) ListSelections(ctx context.Context, matchID, marketID string) ([]*model.Selection, error) {
	var selections []*model.Selection
	if err := r.db.WithContext(ctx).
		Where("match_id = ? AND market_id = ?", matchID, marketID).
		Order("id ASC").
		Find(&selections).Error; err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *matchRepository) ListSelectionsByMatch(ctx context.Context, matchID string) ([]*model.Selection, error) {
	var selections []*model.Selection
	if err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("market_id ASC, id ASC").
		Find(&selections).Error; err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *matchRepository) CreateMatch(ctx context.Context, match *model.Match, market *model.Market, selections []*model.Selection) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 以主键冲突代替先查后写，并发导入同一赛事时只有一个能写入
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(match)
		if res.Error != nil {
			return fmt.Errorf("保存赛事失败: %w, id: %s", res.Error, match.ID)
		}
		if res.RowsAffected == 0 {
			return errMatchExists
		}
		if err := tx.Create(market).Error; err != nil {
			return fmt.Errorf("保存盘口失败: %w, match_id: %s", err, match.ID)
		}
		if len(selections) > 0 {
			if err := tx.Create(selections).Error; err != nil {
				return fmt.Errorf("保存选项失败: %w, match_id: %s", err, match.ID)
			}
		}
		return nil
	})
	if errors.Is(err, errMatchExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *matchRepository) CreateMarket(ctx context.Context, market *model.Market, selections []*model.Selection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(market).Error; err != nil {
			return fmt.Errorf("保存盘口失败: %w, market_id: %s", err, market.ID)
		}
		if len(selections) > 0 {
			if err := tx.Create(selections).Error; err != nil {
				return fmt.Errorf("保存选项失败: %w, market_id: %s", err, market.ID)
			}
		}
		return nil
	})
}

func (r *matchRepository) UpdateMarketStatus(ctx context.Context, matchID, marketID, status string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Market{}).
			Where("match_id = ? AND id = ? AND status <> ?", matchID, marketID, model.MarketStatusClosed).
			Updates(map[string]interface{}{"status": status, "updated_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return marketState(tx, matchID, marketID)
		}
		return nil
	})
}

func (r *matchRepository) AddSelection(ctx context.Context, selection *model.Selection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchOpenMarket(tx, selection.MatchID, selection.MarketID, selection.LastUpdatedAt); err != nil {
			return err
		}
		if err := tx.Create(selection).Error; err != nil {
			return fmt.Errorf("保存选项失败: %w, selection_id: %s", err, selection.ID)
		}
		return nil
	})
}

func (r *matchRepository) UpdateSelectionOdd(ctx context.Context, matchID, marketID, selectionID string, odd model.Price, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchOpenMarket(tx, matchID, marketID, at); err != nil {
			return err
		}
		res := tx.Model(&model.Selection{}).
			Where("match_id = ? AND market_id = ? AND id = ?", matchID, marketID, selectionID).
			Updates(map[string]interface{}{"odd": odd, "last_updated_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Selection not found")
		}
		return nil
	})
}

func (r *matchRepository) SettleMarket(ctx context.Context, p SettleParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件更新代替先查后写：两个并发结算只有一个能把 status 改为 closed
		res := tx.Model(&model.Market{}).
			Where("match_id = ? AND id = ? AND status <> ?", p.MatchID, p.MarketID, model.MarketStatusClosed).
			Updates(map[string]interface{}{
				"status":              model.MarketStatusClosed,
				"winner_selection_id": p.WinnerSelectionID,
				"settled_at":          p.At,
				"settled_by":          p.SettledBy,
				"updated_at":          p.At,
			})
		if res.Error != nil {
			return fmt.Errorf("关闭盘口失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return marketState(tx, p.MatchID, p.MarketID)
		}

		if err := tx.Model(&model.Selection{}).
			Where("match_id = ? AND market_id = ? AND id = ?", p.MatchID, p.MarketID, p.WinnerSelectionID).
			Updates(map[string]interface{}{"status": model.SelectionStatusWon, "last_updated_at": p.At}).Error; err != nil {
			return fmt.Errorf("标记赢家失败: %w", err)
		}
		if err := tx.Model(&model.Selection{}).
			Where("match_id = ? AND market_id = ? AND id <> ?", p.MatchID, p.MarketID, p.WinnerSelectionID).
			Updates(map[string]interface{}{"status": model.SelectionStatusLost, "last_updated_at": p.At}).Error; err != nil {
			return fmt.Errorf("标记输家失败: %w", err)
		}
		return nil
	})
}

// touchOpenMarket 在事务内锁定未关闭的盘口行，与结算的条件更新互斥
func touchOpenMarket(tx *gorm.DB, matchID, marketID string, at time.Time) error {
	res := tx.Model(&model.Market{}).
		Where("match_id = ? AND id = ? AND status <> ?", matchID, marketID, model.MarketStatusClosed).
		Update("updated_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return marketState(tx, matchID, marketID)
	}
	return nil
}

// marketState 条件更新未命中时区分：盘口不存在 / 已关闭
func marketState(tx *gorm.DB, matchID, marketID string) error {
	var m model.Market
	if err := tx.Where("match_id = ? AND id = ?", matchID, marketID).First(&m).Error; err != nil {
		return notFound(err, "Market not found")
	}
	if m.Status == model.MarketStatusClosed {
		return apperr.InvalidState("Market is closed")
	}
	return fmt.Errorf("盘口 %s/%s 更新未生效", matchID, marketID)
}
