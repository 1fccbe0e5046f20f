package service

import (
	"testing"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/event"
	"github.com/nctr-alliance/garden-backend/internal/mail"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store    *memStore
	levels   *memLevels
	profiles *memProfiles
	notes    *memNotifications
	settings *memSettings
	events   *event.Recorder
	outbox   *mail.Outbox

	settingsSvc SettingsService
	status      StatusService
	ledger      LedgerService
	locks       LockService
}

func newHarness(t *testing.T, guard Guard) *harness {
	t.Helper()
	h := &harness{
		store: newMemStore(testNow),
		levels: &memLevels{rows: map[string]model.StatusLevel{
			"starter": {Name: "starter", RewardMultiplier: decimal.NewFromInt(1), SortOrder: 0},
			"bronze":  {Name: "bronze", RewardMultiplier: decimal.RequireFromString("1.1"), SortOrder: 1},
			"silver":  {Name: "silver", RewardMultiplier: decimal.RequireFromString("1.5"), SortOrder: 2},
		}},
		profiles: newMemProfiles(),
		notes:    &memNotifications{},
		settings: newMemSettings(nil),
		events:   &event.Recorder{},
		outbox:   &mail.Outbox{},
	}
	notifier := NewNotificationService(h.notes)
	h.settingsSvc = NewSettingsService(h.settings, &memCache{})
	h.status = NewStatusService(memPortfolios{h.store}, h.levels, h.profiles, notifier, h.outbox, h.events)
	h.ledger = NewLedgerService(memPortfolios{h.store}, memTxs{h.store}, memLedger{h.store}, h.status, notifier, h.events, guard)
	h.locks = NewLockService(memLocks{h.store}, memLedger{h.store}, h.profiles, h.status, notifier, h.outbox, h.events)
	return h
}

func (h *harness) portfolio(t *testing.T, uid string) *model.Portfolio {
	t.Helper()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.snapshot(uid)
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}
