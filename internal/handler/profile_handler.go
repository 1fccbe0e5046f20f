package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

// ProfileHandler serves the caller's profile and the referral program.
type ProfileHandler struct {
	referrals service.ReferralService
}

func NewProfileHandler(referrals service.ReferralService) *ProfileHandler {
	return &ProfileHandler{referrals: referrals}
}

type ProfileResponse struct {
	UserID       string  `json:"userId"`
	Email        string  `json:"email"`
	DisplayName  string  `json:"displayName"`
	ReferralCode string  `json:"referralCode"`
	ReferredBy   *string `json:"referredBy,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func toProfileResponse(p *model.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:       p.UserID,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		ReferralCode: p.ReferralCode,
		ReferredBy:   p.ReferredBy,
		CreatedAt:    formatTime(p.CreatedAt),
	}
}

type ReferralResponse struct {
	ID         uint64          `json:"id"`
	ReferredID string          `json:"referredId"`
	Code       string          `json:"code"`
	RewardNCTR decimal.Decimal `json:"rewardNctr"`
	Rewarded   bool            `json:"rewarded"`
	CreatedAt  string          `json:"createdAt"`
}

func toReferralResponse(r *model.Referral) ReferralResponse {
	return ReferralResponse{
		ID:         r.ID,
		ReferredID: r.ReferredID,
		Code:       r.Code,
		RewardNCTR: r.RewardNCTR,
		Rewarded:   r.Rewarded,
		CreatedAt:  formatTime(r.CreatedAt),
	}
}

type profileRequest struct {
	DisplayName string `json:"displayName"`
}

// Me returns the profile, creating it on first call. POST also stores the
// token email and the displayName from the body.
func (h *ProfileHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	email, _ := c.Get("email").(string)
	var req profileRequest
	if c.Request().Method == http.MethodPost {
		_ = c.Bind(&req)
	}
	p, err := h.referrals.EnsureProfile(c.Request().Context(), uid, email, strings.TrimSpace(req.DisplayName))
	if err != nil {
		return writeError(c, err, "fetch profile")
	}
	return c.JSON(http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) Referrals(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	st, err := h.referrals.Stats(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "fetch referrals")
	}
	list := make([]ReferralResponse, 0, len(st.Referrals))
	for i := range st.Referrals {
		list = append(list, toReferralResponse(&st.Referrals[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":          st.Code,
		"invited":       st.Invited,
		"rewarded":      st.Rewarded,
		"totalRewarded": st.TotalRewarded,
		"inviteReward":  st.InviteReward,
		"referrals":     list,
	})
}

type applyCodeRequest struct {
	Code string `json:"code"`
}

func (h *ProfileHandler) ApplyCode(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	var req applyCodeRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "code is required"))
	}
	ref, err := h.referrals.ApplyCode(c.Request().Context(), uid, req.Code)
	if err != nil {
		return writeError(c, err, "apply referral code")
	}
	return c.JSON(http.StatusCreated, toReferralResponse(ref))
}
