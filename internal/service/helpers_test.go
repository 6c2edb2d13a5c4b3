package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"BetX/internal/apperr"
	"BetX/internal/metrics"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 内存库按连接隔离，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fixedClock 每次调用前进 1ms，保证时间顺序可预测
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

type fakeOddsFeed struct {
	mu     sync.Mutex
	events []model.OddsEvent
	err    error
	calls  int
}

func (f *fakeOddsFeed) FetchCricketOdds(ctx context.Context) ([]model.OddsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []model.Change
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, change model.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

type fakeIdentity struct {
	tokens  map[string]*model.Identity
	created []string
	nextUID string
	err     error
}

func (f *fakeIdentity) VerifyIDToken(ctx context.Context, token string) (*model.Identity, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("token expired")
	}
	return id, nil
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, email+":"+password)
	return f.nextUID, nil
}

var testAdmin = model.Principal{UID: "admin-1", Email: "admin@betx.io", Role: model.RoleAdmin, Status: model.StatusActive}

// testEnv 同一个库上的全部赛事相关服务
type testEnv struct {
	db         *gorm.DB
	repo       repository.MatchRepository
	feed       *fakeOddsFeed
	publisher  *recordingPublisher
	metrics    *metrics.Metrics
	imports    *ImportService
	markets    *MarketService
	settlement *SettlementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewMatchRepository(db)
	feed := &fakeOddsFeed{}
	pub := &recordingPublisher{}
	m := metrics.New()
	logger := newTestLogger()
	clock := fixedClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	env := &testEnv{
		db:         db,
		repo:       repo,
		feed:       feed,
		publisher:  pub,
		metrics:    m,
		imports:    NewImportService(repo, feed, pub, m, time.Second, logger),
		markets:    NewMarketService(repo, pub, m, logger),
		settlement: NewSettlementService(repo, pub, m, logger),
	}
	env.imports.now = clock
	env.markets.now = clock
	env.settlement.now = clock
	return env
}

func (e *testEnv) countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := e.db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func candidate(id string) *model.MatchCandidate {
	return &model.MatchCandidate{
		ID:        id,
		Name:      "India vs Australia, 1st T20I",
		TeamA:     "India",
		TeamB:     "Australia",
		StartTime: "2026-03-01T14:00:00Z",
		Status:    "Match not started",
	}
}
