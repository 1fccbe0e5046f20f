package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// memStore backs the portfolio, transaction, lock and ledger fakes with the
// same bucket rules as the SQL ledger.
type memStore struct {
	mu         sync.Mutex
	now        time.Time
	portfolios map[string]*model.Portfolio
	txs        map[string]*model.Transaction
	txOrder    []string
	locks      map[string]*model.Lock
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		now:        now,
		portfolios: map[string]*model.Portfolio{},
		txs:        map[string]*model.Transaction{},
		locks:      map[string]*model.Lock{},
	}
}

func (m *memStore) portfolio(uid string) *model.Portfolio {
	p, ok := m.portfolios[uid]
	if !ok {
		p = &model.Portfolio{UserID: uid, OpportunityStatus: "starter"}
		m.portfolios[uid] = p
	}
	return p
}

func (m *memStore) snapshot(uid string) *model.Portfolio {
	cp := *m.portfolio(uid)
	return &cp
}

func (m *memStore) bucket(p *model.Portfolio, cat *model.LockCategory) *decimal.Decimal {
	switch {
	case cat == nil:
		return &p.AvailableNCTR
	case *cat == model.Lock90:
		return &p.Lock90NCTR
	default:
		return &p.Lock360NCTR
	}
}

func (m *memStore) insertTx(t *model.Transaction) {
	cp := *t
	m.txs[t.ID] = &cp
	m.txOrder = append(m.txOrder, t.ID)
}

func (m *memStore) txCount(uid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.txs {
		if t.UserID == uid {
			n++
		}
	}
	return n
}

type memPortfolios struct{ *memStore }

func (r memPortfolios) Get(_ context.Context, uid string) (*model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(uid), nil
}

func (r memPortfolios) SetStatus(_ context.Context, uid, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.portfolio(uid).OpportunityStatus = status
	return nil
}

func (memPortfolios) SetDB(*gorm.DB) {}

type memTxs struct{ *memStore }

func (r memTxs) FindByID(_ context.Context, id string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTxs) FindByExternalID(_ context.Context, ext string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.ExternalTransactionID != nil && *t.ExternalTransactionID == ext {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memTxs) ListByUser(_ context.Context, uid string, f repository.TransactionFilter) ([]model.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Transaction
	for i := len(r.txOrder) - 1; i >= 0; i-- {
		t := r.txs[r.txOrder[i]]
		if t.UserID != uid || (f.Source != "" && t.Source != f.Source) || (f.Status != "" && t.Status != f.Status) {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (memTxs) SetDB(*gorm.DB) {}

type memLocks struct{ *memStore }

func (r memLocks) FindByID(_ context.Context, id string) (*model.Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r memLocks) ListByUser(_ context.Context, uid string, status model.LockStatus) ([]model.Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Lock
	for _, l := range r.locks {
		if l.UserID == uid && (status == "" || l.Status == status) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LockDate.Before(out[j].LockDate) })
	return out, nil
}

func (r memLocks) ListMatured(_ context.Context, now time.Time, after *repository.MaturedCursor, limit int) ([]model.Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Lock
	for _, l := range r.locks {
		if !l.Matured(now) {
			continue
		}
		if after != nil && (l.UnlockDate.Before(after.UnlockDate) ||
			(l.UnlockDate.Equal(after.UnlockDate) && l.ID <= after.ID)) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockDate.Equal(out[j].UnlockDate) {
			return out[i].UnlockDate.Before(out[j].UnlockDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (memLocks) SetDB(*gorm.DB) {}

type memLedger struct{ *memStore }

func (r memLedger) ApplyCredit(_ context.Context, t *model.Transaction) (*model.Portfolio, *model.Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ExternalTransactionID != nil {
		for _, e := range r.txs {
			if e.ExternalTransactionID != nil && *e.ExternalTransactionID == *t.ExternalTransactionID {
				return nil, nil, gorm.ErrDuplicatedKey
			}
		}
	}
	p := r.portfolio(t.UserID)
	if t.Status == model.TxStatusPending {
		r.insertTx(t)
		p.PendingNCTR = p.PendingNCTR.Add(t.NCTRAmount)
		return r.snapshot(t.UserID), nil, nil
	}
	now := r.now
	t.CompletedAt = &now
	var lock *model.Lock
	if t.LockCategory != nil {
		lock = model.NewLock(t.UserID, t.NCTRAmount, *t.LockCategory, now)
		lock.SourceTransactionID = &t.ID
		t.LockID = &lock.ID
		cp := *lock
		r.locks[lock.ID] = &cp
	}
	r.insertTx(t)
	b := r.bucket(p, t.LockCategory)
	*b = b.Add(t.NCTRAmount)
	p.TotalEarnedNCTR = p.TotalEarnedNCTR.Add(t.NCTRAmount)
	return r.snapshot(t.UserID), lock, nil
}

func (r memLedger) CompletePending(_ context.Context, txID string) (*model.Transaction, *model.Portfolio, *model.Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[txID]
	if !ok || t.Status != model.TxStatusPending {
		return nil, nil, nil, repository.ErrNotPending
	}
	now := r.now
	t.Status = model.TxStatusCompleted
	t.CompletedAt = &now
	var lock *model.Lock
	if t.LockCategory != nil {
		lock = model.NewLock(t.UserID, t.NCTRAmount, *t.LockCategory, now)
		lock.SourceTransactionID = &t.ID
		t.LockID = &lock.ID
		cp := *lock
		r.locks[lock.ID] = &cp
	}
	p := r.portfolio(t.UserID)
	p.PendingNCTR = p.PendingNCTR.Sub(t.NCTRAmount)
	b := r.bucket(p, t.LockCategory)
	*b = b.Add(t.NCTRAmount)
	p.TotalEarnedNCTR = p.TotalEarnedNCTR.Add(t.NCTRAmount)
	cp := *t
	return &cp, r.snapshot(t.UserID), lock, nil
}

func (r memLedger) FailPending(_ context.Context, txID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[txID]
	if !ok || t.Status != model.TxStatusPending {
		return nil, repository.ErrNotPending
	}
	now := r.now
	t.Status = model.TxStatusFailed
	t.CompletedAt = &now
	p := r.portfolio(t.UserID)
	p.PendingNCTR = p.PendingNCTR.Sub(t.NCTRAmount)
	cp := *t
	return &cp, nil
}

func (r memLedger) CommitAvailable(_ context.Context, uid string, amount decimal.Decimal, cat model.LockCategory) (*model.Lock, *model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.portfolio(uid)
	if p.AvailableNCTR.LessThan(amount) {
		return nil, nil, repository.ErrInsufficientFunds
	}
	lock := model.NewLock(uid, amount, cat, r.now)
	p.AvailableNCTR = p.AvailableNCTR.Sub(amount)
	b := r.bucket(p, &cat)
	*b = b.Add(amount)
	cp := *lock
	r.locks[lock.ID] = &cp
	r.insertTx(model.NewMovementTx(uid, model.TxTypeLocked, model.SourceCommitment, amount, cat, lock.ID, r.now))
	return lock, r.snapshot(uid), nil
}

func (r memLedger) upgrade(l *model.Lock) {
	now := r.now
	l.LockCategory = model.Lock360
	l.CommitmentDays = 360
	l.UnlockDate = now.AddDate(0, 0, 360)
	l.CanUpgrade = false
	l.UpgradedAt = &now
	p := r.portfolio(l.UserID)
	p.Lock90NCTR = p.Lock90NCTR.Sub(l.Amount)
	p.Lock360NCTR = p.Lock360NCTR.Add(l.Amount)
	r.insertTx(model.NewMovementTx(l.UserID, model.TxTypeUpgraded, model.SourceLockUpgrade, l.Amount, model.Lock360, l.ID, now))
}

func (r memLedger) UpgradeLock(_ context.Context, uid, lockID string) (*model.Lock, *model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[lockID]
	if !ok || l.UserID != uid || !l.Upgradeable() {
		return nil, nil, repository.ErrLockNotEligible
	}
	r.upgrade(l)
	cp := *l
	return &cp, r.snapshot(uid), nil
}

func (r memLedger) UpgradeAll90(_ context.Context, uid string) ([]model.Lock, *model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Lock
	for _, l := range r.locks {
		if l.UserID == uid && l.Upgradeable() {
			r.upgrade(l)
			out = append(out, *l)
		}
	}
	return out, r.snapshot(uid), nil
}

func (r memLedger) ReleaseLock(_ context.Context, lockID string) (*model.Lock, *model.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[lockID]
	if !ok || !l.Matured(r.now) {
		return nil, nil, repository.ErrLockNotEligible
	}
	now := r.now
	l.Status = model.LockStatusUnlocked
	l.UnlockedAt = &now
	l.CanUpgrade = false
	p := r.portfolio(l.UserID)
	cat := l.LockCategory
	b := r.bucket(p, &cat)
	*b = b.Sub(l.Amount)
	p.AvailableNCTR = p.AvailableNCTR.Add(l.Amount)
	r.insertTx(model.NewMovementTx(l.UserID, model.TxTypeUnlocked, model.SourceLockRelease, l.Amount, cat, l.ID, now))
	cp := *l
	return &cp, r.snapshot(l.UserID), nil
}

func (memLedger) SetDB(*gorm.DB) {}

type memLevels struct {
	rows map[string]model.StatusLevel
}

func (r *memLevels) List(context.Context) ([]model.StatusLevel, error) {
	var out []model.StatusLevel
	for _, l := range r.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *memLevels) Get(_ context.Context, name string) (*model.StatusLevel, error) {
	l, ok := r.rows[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memLevels) Upsert(_ context.Context, l *model.StatusLevel) error {
	if r.rows == nil {
		r.rows = map[string]model.StatusLevel{}
	}
	r.rows[l.Name] = *l
	return nil
}

func (*memLevels) SetDB(*gorm.DB) {}

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]*model.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{rows: map[string]*model.Profile{}}
}

func (r *memProfiles) Get(_ context.Context, uid string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProfiles) Create(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.UserID == p.UserID || e.ReferralCode == p.ReferralCode {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *p
	r.rows[p.UserID] = &cp
	return nil
}

func (r *memProfiles) FindByCode(_ context.Context, code string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ReferralCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProfiles) FindByEmail(_ context.Context, email string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProfiles) UpdateContact(_ context.Context, uid, email, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if email != "" {
		p.Email = email
	}
	if name != "" {
		p.DisplayName = name
	}
	return nil
}

func (*memProfiles) SetDB(*gorm.DB) {}

type memNotifications struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (r *memNotifications) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint64(len(r.rows) + 1)
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memNotifications) List(_ context.Context, uid string, f repository.NotificationFilter) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.rows {
		switch {
		case n.UserID != uid,
			f.UnreadOnly && n.ReadAt != nil,
			f.Type != "" && n.Type != f.Type,
			f.LockID != "" && (n.LockID == nil || *n.LockID != f.LockID),
			f.TransactionID != "" && (n.TransactionID == nil || *n.TransactionID != f.TransactionID):
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, uid string, ids []uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	now := time.Now()
	var n int64
	for i := range r.rows {
		row := &r.rows[i]
		if row.UserID != uid || row.ReadAt != nil || (len(ids) > 0 && !want[row.ID]) {
			continue
		}
		row.ReadAt = &now
		n++
	}
	return n, nil
}

func (r *memNotifications) CountUnread(ctx context.Context, uid string) (int64, error) {
	list, _ := r.List(ctx, uid, repository.NotificationFilter{UnreadOnly: true})
	return int64(len(list)), nil
}

func (*memNotifications) SetDB(*gorm.DB) {}

func (r *memNotifications) types(uid string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.rows {
		if n.UserID == uid {
			out = append(out, n.Type)
		}
	}
	return out
}

type memSettings struct {
	rows  map[string]model.SiteSetting
	reads int
}

func newMemSettings(kv map[string]string) *memSettings {
	s := &memSettings{rows: map[string]model.SiteSetting{}}
	for k, v := range kv {
		s.rows[k] = model.SiteSetting{Key: k, Value: v}
	}
	return s
}

func (r *memSettings) Get(_ context.Context, key string) (*model.SiteSetting, error) {
	r.reads++
	s, ok := r.rows[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memSettings) List(context.Context) ([]model.SiteSetting, error) {
	var out []model.SiteSetting
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, nil
}

func (r *memSettings) Upsert(_ context.Context, s *model.SiteSetting) error {
	r.rows[s.Key] = *s
	return nil
}

func (*memSettings) SetDB(*gorm.DB) {}

type memCheckins struct {
	rows []model.DailyCheckin
}

func (r *memCheckins) Last(_ context.Context, uid string) (*model.DailyCheckin, error) {
	var last *model.DailyCheckin
	for i := range r.rows {
		c := r.rows[i]
		if c.UserID == uid && (last == nil || c.CheckinDate > last.CheckinDate) {
			last = &c
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return last, nil
}

func (r *memCheckins) Create(_ context.Context, c *model.DailyCheckin) error {
	for _, e := range r.rows {
		if e.UserID == c.UserID && e.CheckinDate == c.CheckinDate {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uint64(len(r.rows) + 1)
	r.rows = append(r.rows, *c)
	return nil
}

func (r *memCheckins) Delete(_ context.Context, id uint64) error {
	for i, c := range r.rows {
		if c.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memCheckins) ListByUser(_ context.Context, uid string, _ int) ([]model.DailyCheckin, error) {
	var out []model.DailyCheckin
	for _, c := range r.rows {
		if c.UserID == uid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (*memCheckins) SetDB(*gorm.DB) {}

type memReferrals struct {
	profiles *memProfiles
	rows     []model.Referral
}

func (r *memReferrals) Link(_ context.Context, ref *model.Referral) error {
	r.profiles.mu.Lock()
	defer r.profiles.mu.Unlock()
	p, ok := r.profiles.rows[ref.ReferredID]
	if !ok || p.ReferredBy != nil {
		return repository.ErrAlreadyReferred
	}
	by := ref.ReferrerID
	p.ReferredBy = &by
	ref.ID = uint64(len(r.rows) + 1)
	r.rows = append(r.rows, *ref)
	return nil
}

func (r *memReferrals) MarkRewarded(_ context.Context, id uint64, reward decimal.Decimal, at time.Time) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Rewarded = true
			r.rows[i].RewardNCTR = reward
			r.rows[i].RewardedAt = &at
		}
	}
	return nil
}

func (r *memReferrals) ListByReferrer(_ context.Context, referrerID string, _ int) ([]model.Referral, error) {
	var out []model.Referral
	for _, ref := range r.rows {
		if ref.ReferrerID == referrerID {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (r *memReferrals) Stats(_ context.Context, referrerID string) (*repository.ReferralStats, error) {
	st := &repository.ReferralStats{TotalRewarded: decimal.Zero}
	for _, ref := range r.rows {
		if ref.ReferrerID != referrerID {
			continue
		}
		st.Invited++
		if ref.Rewarded {
			st.Rewarded++
			st.TotalRewarded = st.TotalRewarded.Add(ref.RewardNCTR)
		}
	}
	return st, nil
}

func (*memReferrals) SetDB(*gorm.DB) {}

type memLearning struct {
	modules     map[uint64]*model.LearningModule
	completions []model.LearningCompletion
}

func newMemLearning(mods ...model.LearningModule) *memLearning {
	r := &memLearning{modules: map[uint64]*model.LearningModule{}}
	for i := range mods {
		m := mods[i]
		r.modules[m.ID] = &m
	}
	return r
}

func (r *memLearning) List(_ context.Context, activeOnly bool) ([]model.LearningModule, error) {
	var out []model.LearningModule
	for _, m := range r.modules {
		if !activeOnly || m.Active {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLearning) Get(_ context.Context, id uint64) (*model.LearningModule, error) {
	m, ok := r.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memLearning) Save(_ context.Context, m *model.LearningModule) error {
	if m.ID == 0 {
		m.ID = uint64(len(r.modules) + 1)
	}
	cp := *m
	r.modules[m.ID] = &cp
	return nil
}

func (r *memLearning) UpsertBySlug(ctx context.Context, m *model.LearningModule) error {
	for _, e := range r.modules {
		if e.Slug == m.Slug {
			m.ID = e.ID
		}
	}
	return r.Save(ctx, m)
}

func (r *memLearning) SetQuiz(_ context.Context, id uint64, quiz datatypes.JSON) error {
	m, ok := r.modules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Quiz = quiz
	return nil
}

func (r *memLearning) CreateCompletion(_ context.Context, c *model.LearningCompletion) error {
	for _, e := range r.completions {
		if e.UserID == c.UserID && e.ModuleID == c.ModuleID {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uint64(len(r.completions) + 1)
	r.completions = append(r.completions, *c)
	return nil
}

func (r *memLearning) DeleteCompletion(_ context.Context, id uint64) error {
	for i, c := range r.completions {
		if c.ID == id {
			r.completions = append(r.completions[:i], r.completions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memLearning) SetCompletionTx(_ context.Context, id uint64, txID string) error {
	for i := range r.completions {
		if r.completions[i].ID == id {
			r.completions[i].TransactionID = &txID
		}
	}
	return nil
}

func (r *memLearning) CompletedModuleIDs(_ context.Context, uid string) ([]uint64, error) {
	var out []uint64
	for _, c := range r.completions {
		if c.UserID == uid {
			out = append(out, c.ModuleID)
		}
	}
	return out, nil
}

func (*memLearning) SetDB(*gorm.DB) {}

type memBrands struct {
	rows map[string]model.Brand
}

func brandKey(src model.BrandSource, ext string) string {
	return string(src) + "/" + ext
}

func (r *memBrands) Upsert(_ context.Context, b *model.Brand) error {
	if r.rows == nil {
		r.rows = map[string]model.Brand{}
	}
	k := brandKey(b.Source, b.ExternalID)
	if prev, ok := r.rows[k]; ok && !b.NCTRPerDollar.IsPositive() {
		b.NCTRPerDollar = prev.NCTRPerDollar
	}
	r.rows[k] = *b
	return nil
}

func (r *memBrands) FindByExternal(_ context.Context, src model.BrandSource, ext string) (*model.Brand, error) {
	b, ok := r.rows[brandKey(src, ext)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *memBrands) List(_ context.Context, src model.BrandSource, activeOnly bool, _, _ int) ([]model.Brand, int64, error) {
	var out []model.Brand
	for _, b := range r.rows {
		if (src == "" || b.Source == src) && (!activeOnly || b.Active) {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (*memBrands) SetDB(*gorm.DB) {}

type memCache struct {
	kv map[string]string
}

func (c *memCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := c.kv[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) {
	if c.kv == nil {
		c.kv = map[string]string{}
	}
	c.kv[key] = value
}

func (c *memCache) Delete(_ context.Context, key string) {
	delete(c.kv, key)
}

// busyGuard reports every key as held by another worker.
type busyGuard struct{}

func (busyGuard) Acquire(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (busyGuard) Release(context.Context, string)                              {}
