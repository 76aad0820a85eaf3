package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gwi.com/induction-assistant/internal/core"
	"gwi.com/induction-assistant/internal/store"
)

const policiesCategory = "company_policies"

// companyCategories are edited together on the company profile screen.
var companyCategories = []string{"company_overview", "company_timings", "departments", "hr_contacts"}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; the client drops its copy.
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.ComputeAnalytics(h.sessions.All()))
}

func (h *APIHandler) ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]store.Turn)
	for _, s := range h.sessions.All() {
		out[s.ID] = s.Turns
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) ResetChatsHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Reset()
	h.logger.Info().Msg("All chat sessions cleared")
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "sessionID"))
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *APIHandler) GetPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeItems(w, r, policiesCategory)
}

func (h *APIHandler) PutPoliciesHandler(w http.ResponseWriter, r *http.Request) {
	h.replaceFromBody(w, r, policiesCategory)
}

// GetCompanyHandler returns the company categories that exist, keyed by
// file name.
func (h *APIHandler) GetCompanyHandler(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]store.KnowledgeRecord)
	for _, name := range companyCategories {
		info, err := h.knowledge.CategoryInfo(name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		out[name+".json"] = info.Items
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) PutCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string][]store.KnowledgeRecord
	if err := h.decodeBody(r, &body, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	updates := make(map[string][]store.KnowledgeRecord, len(body))
	for key, items := range body {
		name := strings.TrimSuffix(key, ".json")
		if !isCompanyCategory(name) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a company category", key))
			return
		}
		updates[name] = items
	}

	for _, name := range companyCategories {
		items, present := updates[name]
		if !present {
			continue
		}
		if err := h.knowledge.ReplaceCategory(r.Context(), name, items); err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func isCompanyCategory(name string) bool {
	for _, c := range companyCategories {
		if c == name {
			return true
		}
	}
	return false
}

func (h *APIHandler) AdminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.knowledge.Categories()})
}

type ReplaceCategoryRequest struct {
	Category string                  `json:"category" validate:"required"`
	Items    []store.KnowledgeRecord `json:"items"`
}

func (h *APIHandler) ReplaceCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req ReplaceCategoryRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.knowledge.ReplaceCategory(r.Context(), req.Category, req.Items); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info().Str("category", req.Category).Int("items", len(req.Items)).Msg("Category replaced")
	writeJSON(w, http.StatusOK, okResponse)
}

type AddItemRequest struct {
	Category string                 `json:"category" validate:"required"`
	Item     *store.KnowledgeRecord `json:"item" validate:"required"`
}

func (h *APIHandler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.knowledge.AppendItem(r.Context(), req.Category, *req.Item); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info().Str("category", req.Category).Msg("Item added")
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *APIHandler) GetCategoryItemsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeItems(w, r, chi.URLParam(r, "category"))
}

func (h *APIHandler) PutCategoryItemsHandler(w http.ResponseWriter, r *http.Request) {
	h.replaceFromBody(w, r, chi.URLParam(r, "category"))
}

func (h *APIHandler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	if err := h.knowledge.DeleteItem(r.Context(), category, index); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, store.ErrIndexOutOfRange):
			writeError(w, http.StatusBadRequest, "index out of range")
		default:
			writeServiceError(w, h.logger, err)
		}
		return
	}
	h.logger.Info().Str("category", category).Int("index", index).Msg("Item deleted")
	writeJSON(w, http.StatusOK, okResponse)
}

type disabledCategories struct {
	Disabled []string `json:"disabled"`
}

type disabledUpdateResponse struct {
	Success  bool     `json:"success"`
	Disabled []string `json:"disabled"`
}

func (h *APIHandler) GetDisabledHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, disabledCategories{Disabled: h.settings.Disabled()})
}

func (h *APIHandler) PutDisabledHandler(w http.ResponseWriter, r *http.Request) {
	var req disabledCategories
	if err := h.decodeBody(r, &req, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.settings.ReplaceDisabled(req.Disabled)
	writeJSON(w, http.StatusOK, disabledUpdateResponse{Success: true, Disabled: h.settings.Disabled()})
}

// GetSettingsHandler reports every known category, with defaults for those
// that were never configured.
func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	current := h.settings.Current()
	out := make(map[string]store.CategorySetting)
	for _, cat := range h.knowledge.Categories() {
		out[cat] = current.Lookup(cat)
	}
	for cat, cs := range current {
		out[cat] = cs
	}
	writeJSON(w, http.StatusOK, out)
}

type settingInput struct {
	Enabled *bool  `json:"enabled"`
	Message string `json:"message"`
}

func (h *APIHandler) PutSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]*settingInput
	if err := h.decodeBody(r, &body, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	next := make(store.Settings, len(body))
	for cat, in := range body {
		cs := store.CategorySetting{Enabled: true}
		if in != nil {
			if in.Enabled != nil {
				cs.Enabled = *in.Enabled
			}
			cs.Message = in.Message
		}
		next[cat] = cs
	}
	h.settings.Replace(next)
	h.logger.Info().Int("categories", len(next)).Strs("disabled", h.settings.Disabled()).Msg("Category settings replaced")
	writeJSON(w, http.StatusOK, okResponse)
}

func (h *APIHandler) writeItems(w http.ResponseWriter, r *http.Request, category string) {
	items, err := h.knowledge.Items(r.Context(), category)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) replaceFromBody(w http.ResponseWriter, r *http.Request, category string) {
	var items []store.KnowledgeRecord
	if err := h.decodeBody(r, &items, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := h.knowledge.ReplaceCategory(r.Context(), category, items); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info().Str("category", category).Int("items", len(items)).Msg("Category replaced")
	writeJSON(w, http.StatusOK, okResponse)
}
