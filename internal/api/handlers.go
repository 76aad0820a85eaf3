package api

import (
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/auth"
	"gwi.com/induction-assistant/internal/core"
	"gwi.com/induction-assistant/internal/store"
	"gwi.com/induction-assistant/internal/utils"
)

const defaultTestQuestion = "Hello, are you working?"

type APIHandler struct {
	assistant *core.AssistantService
	knowledge *store.KnowledgeStore
	settings  *store.SettingsStore
	sessions  *store.SessionStore
	auth      *auth.Authenticator
	validate  *validator.Validate
	logger    zerolog.Logger
}

type Deps struct {
	Assistant *core.AssistantService
	Knowledge *store.KnowledgeStore
	Settings  *store.SettingsStore
	Sessions  *store.SessionStore
	Auth      *auth.Authenticator
	Logger    zerolog.Logger
}

func NewAPIHandler(d Deps) *APIHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &APIHandler{
		assistant: d.Assistant,
		knowledge: d.Knowledge,
		settings:  d.Settings,
		sessions:  d.Sessions,
		auth:      d.Auth,
		validate:  v,
		logger:    d.Logger,
	}
}

type healthResponse struct {
	Status     string      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Categories []string    `json:"knowledge_base_categories"`
	LLMStatus  core.Health `json:"llm_status"`
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Categories: h.knowledge.Categories(),
		LLMStatus:  h.assistant.Health(r.Context()),
	})
}

type ChatRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "No question provided")
		return
	}

	reply, err := h.assistant.Ask(r.Context(), req.Question, req.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			writeError(w, http.StatusBadRequest, "No question provided")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type historyResponse struct {
	SessionID string       `json:"session_id"`
	History   []store.Turn `json:"history"`
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, History: h.sessions.Get(id)})
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

func (h *APIHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.knowledge.Categories()})
}

func (h *APIHandler) CategoryHandler(w http.ResponseWriter, r *http.Request) {
	info, err := h.knowledge.CategoryInfo(chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Category not found")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type knowledgeQuestion struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Department     string    `json:"department"`
	Category       string    `json:"category"`
	SourceCategory string    `json:"source_category"`
	Timestamp      time.Time `json:"timestamp"`
}

type knowledgeBaseResponse struct {
	Success    bool                `json:"success"`
	Questions  []knowledgeQuestion `json:"questions"`
	TotalCount int                 `json:"total_count"`
}

// KnowledgeBaseHandler lists every record, the exact-match set included.
func (h *APIHandler) KnowledgeBaseHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.knowledge.Snapshot()

	names := append([]string(nil), snap.Categories()...)
	if len(snap.Fixed()) > 0 {
		names = append(names, h.knowledge.FixedCategory())
		sort.Strings(names)
	}

	questions := []knowledgeQuestion{}
	for _, name := range names {
		entries := snap.Entries(name)
		if name == h.knowledge.FixedCategory() {
			entries = snap.Fixed()
		}
		for _, e := range entries {
			if e.Record.Question == "" {
				continue
			}
			questions = append(questions, knowledgeQuestion{
				ID:             name + "_" + strconv.Itoa(e.Position),
				Question:       e.Record.Question,
				Answer:         e.Record.Answer,
				Department:     core.Department(name),
				Category:       utils.TitleCase(name),
				SourceCategory: name,
				Timestamp:      snap.LoadedAt(),
			})
		}
	}

	writeJSON(w, http.StatusOK, knowledgeBaseResponse{Success: true, Questions: questions, TotalCount: len(questions)})
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (h *APIHandler) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: core.Suggestions})
}

type testRequest struct {
	Question string `json:"question"`
}

type testResponse struct {
	Question  string      `json:"question"`
	Response  string      `json:"response"`
	LLMStatus core.Health `json:"llm_status"`
}

func (h *APIHandler) TestLLMHandler(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		req.Question = defaultTestQuestion
	}

	text, health := h.assistant.TestGeneration(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, testResponse{Question: req.Question, Response: text, LLMStatus: health})
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn().Str("username", req.Username).Msg("Rejected admin login")
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
