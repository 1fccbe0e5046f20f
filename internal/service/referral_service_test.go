package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfileStable(t *testing.T) {
	h := newHarness(t, nil)
	svc := NewReferralService(h.profiles, &memReferrals{profiles: h.profiles}, h.settingsSvc, h.ledger)
	ctx := context.Background()

	p1, err := svc.EnsureProfile(ctx, "u1", "a@example.com", "Ada")
	require.NoError(t, err)
	assert.Len(t, p1.ReferralCode, referralCodeLen)

	p2, err := svc.EnsureProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, p1.ReferralCode, p2.ReferralCode)
	assert.Equal(t, "a@example.com", p2.Email)
}

func TestApplyCode(t *testing.T) {
	h := newHarness(t, nil)
	refs := &memReferrals{profiles: h.profiles}
	svc := NewReferralService(h.profiles, refs, h.settingsSvc, h.ledger)
	ctx := context.Background()

	referrer, err := svc.EnsureProfile(ctx, "alice", "", "")
	require.NoError(t, err)
	me, err := svc.EnsureProfile(ctx, "bob", "", "")
	require.NoError(t, err)

	_, err = svc.ApplyCode(ctx, "bob", me.ReferralCode)
	require.ErrorIs(t, err, ErrSelfReferral)
	_, err = svc.ApplyCode(ctx, "bob", "NOPE0000")
	require.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.ApplyCode(ctx, "bob", " ")
	require.ErrorIs(t, err, ErrInvalidCode)

	ref, err := svc.ApplyCode(ctx, "bob", " "+referrer.ReferralCode+" ")
	require.NoError(t, err)
	assert.True(t, ref.Rewarded)
	requireDec(t, "1000", ref.RewardNCTR)
	requireDec(t, "1000", h.portfolio(t, "alice").Lock360NCTR)

	_, err = svc.ApplyCode(ctx, "bob", referrer.ReferralCode)
	require.ErrorIs(t, err, ErrAlreadyReferred)
	requireDec(t, "1000", h.portfolio(t, "alice").Lock360NCTR)

	st, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, referrer.ReferralCode, st.Code)
	assert.EqualValues(t, 1, st.Invited)
	assert.EqualValues(t, 1, st.Rewarded)
	requireDec(t, "1000", st.TotalRewarded)
	assert.Len(t, st.Referrals, 1)
}

func TestApplyCodeRefereeBonus(t *testing.T) {
	h := newHarness(t, nil)
	h.settings.rows[SettingRefereeBonus] = siteSetting(SettingRefereeBonus, "50")
	svc := NewReferralService(h.profiles, &memReferrals{profiles: h.profiles}, h.settingsSvc, h.ledger)
	ctx := context.Background()

	referrer, err := svc.EnsureProfile(ctx, "alice", "", "")
	require.NoError(t, err)
	_, err = svc.ApplyCode(ctx, "bob", referrer.ReferralCode)
	require.NoError(t, err)
	requireDec(t, "50", h.portfolio(t, "bob").Lock360NCTR)
}
