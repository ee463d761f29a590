package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/pkg/metrics"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type privilegeFixture struct {
	db        *gorm.DB
	ledger    *Ledger
	metrics   *metrics.PrivilegeMetrics
	privilege *PrivilegeService
	expense   *ExpenseService
}

// setupPrivilege 无 Redis 的账户服务，时钟固定为 fixedNow
func setupPrivilege(t *testing.T, legacyReversal bool) *privilegeFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	m := metrics.NewPrivilegeMetrics(prometheus.NewRegistry())

	ledger := NewLedger(db, nil, nil, m)
	ledger.now = func() time.Time { return fixedNow }

	userRepo := repository.NewUserRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	return &privilegeFixture{
		db:        db,
		ledger:    ledger,
		metrics:   m,
		privilege: NewPrivilegeService(ledger, userRepo, repository.NewPrivilegeRepository(db), expenseRepo),
		expense:   NewExpenseService(ledger, userRepo, expenseRepo, legacyReversal),
	}
}
