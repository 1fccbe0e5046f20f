package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/ai"
	"github.com/nctr-alliance/garden-backend/internal/model"
	"github.com/nctr-alliance/garden-backend/internal/service"
	"github.com/shopspring/decimal"
)

type LearningHandler struct {
	svc service.LearningService
}

func NewLearningHandler(svc service.LearningService) *LearningHandler {
	return &LearningHandler{svc: svc}
}

type QuizQuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      *int     `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type ModuleResponse struct {
	ID           uint64                 `json:"id"`
	Slug         string                 `json:"slug"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body,omitempty"`
	RewardNCTR   decimal.Decimal        `json:"rewardNctr"`
	LockCategory string                 `json:"lockCategory"`
	Active       bool                   `json:"active"`
	Completed    bool                   `json:"completed"`
	Quiz         []QuizQuestionResponse `json:"quiz,omitempty"`
}

// toModuleResponse hides quiz answers unless withAnswers is set.
func toModuleResponse(m *model.LearningModule, completed, withBody, withAnswers bool) ModuleResponse {
	r := ModuleResponse{
		ID:           m.ID,
		Slug:         m.Slug,
		Title:        m.Title,
		RewardNCTR:   m.RewardNCTR,
		LockCategory: string(m.LockCategory),
		Active:       m.Active,
		Completed:    completed,
	}
	if withBody {
		r.Body = m.Body
	}
	if len(m.Quiz) > 0 {
		var qs []ai.QuizQuestion
		if err := json.Unmarshal(m.Quiz, &qs); err == nil {
			r.Quiz = toQuizResponse(qs, withAnswers)
		}
	}
	return r
}

func toQuizResponse(qs []ai.QuizQuestion, withAnswers bool) []QuizQuestionResponse {
	out := make([]QuizQuestionResponse, 0, len(qs))
	for _, q := range qs {
		qr := QuizQuestionResponse{Question: q.Question, Options: q.Options}
		if withAnswers {
			answer := q.Answer
			qr.Answer = &answer
			qr.Explanation = q.Explanation
		}
		out = append(out, qr)
	}
	return out
}

func parseModuleID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *LearningHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	views, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "fetch modules")
	}
	resp := make([]ModuleResponse, 0, len(views))
	for i := range views {
		resp = append(resp, toModuleResponse(&views[i].Module, views[i].Completed, false, false))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"modules": resp})
}

func (h *LearningHandler) Get(c echo.Context) error {
	id, ok := parseModuleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid module id"))
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "fetch module")
	}
	if !m.Active {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	}
	return c.JSON(http.StatusOK, toModuleResponse(m, false, true, false))
}

func (h *LearningHandler) Complete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return unauthorized(c)
	}
	id, ok := parseModuleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid module id"))
	}
	res, err := h.svc.Complete(c.Request().Context(), uid, id)
	if err != nil {
		return writeError(c, err, "complete module")
	}
	resp := map[string]interface{}{"status": "completed"}
	if res != nil && res.Transaction != nil {
		resp["transaction"] = toTransactionResponse(res.Transaction)
	}
	if res != nil && res.Portfolio != nil {
		resp["portfolio"] = toPortfolioResponse(res.Portfolio)
	}
	return c.JSON(http.StatusOK, resp)
}

type moduleRequest struct {
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	RewardNCTR   decimal.Decimal `json:"rewardNctr"`
	LockCategory string          `json:"lockCategory"`
	Active       *bool           `json:"active"`
}

// Save creates a module, or updates it when the route carries an id.
func (h *LearningHandler) Save(c echo.Context) error {
	var req moduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	m := &model.LearningModule{
		Slug:         req.Slug,
		Title:        req.Title,
		Body:         req.Body,
		RewardNCTR:   req.RewardNCTR,
		LockCategory: model.LockCategory(req.LockCategory),
		Active:       req.Active == nil || *req.Active,
	}
	status := http.StatusCreated
	if c.Param("id") != "" {
		id, ok := parseModuleID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid module id"))
		}
		existing, err := h.svc.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err, "fetch module")
		}
		m.ID = existing.ID
		m.Quiz = existing.Quiz
		m.CreatedAt = existing.CreatedAt
		status = http.StatusOK
	}
	if err := h.svc.Save(c.Request().Context(), m); err != nil {
		return writeError(c, err, "save module")
	}
	return c.JSON(status, toModuleResponse(m, false, true, true))
}

type draftQuizRequest struct {
	Questions int `json:"questions"`
}

func (h *LearningHandler) DraftQuiz(c echo.Context) error {
	id, ok := parseModuleID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid module id"))
	}
	var req draftQuizRequest
	_ = c.Bind(&req)
	qs, err := h.svc.DraftQuiz(c.Request().Context(), id, req.Questions)
	if err != nil {
		return writeError(c, err, "draft quiz")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"quiz": toQuizResponse(qs, true)})
}
