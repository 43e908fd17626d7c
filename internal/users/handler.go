package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-io/gatehouse/internal/authn"
	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
	"github.com/gatehouse-io/gatehouse/internal/view"
)

// Handler wires HTTP endpoints for account administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates}
}

// MountRoutes registers account routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showAccounts)
	r.Get("/api", h.listAccounts)
}

func (h *Handler) showAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data := view.TemplateData{
		Title:       "User accounts",
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        authn.UserFromContext(r.Context()),
		Data:        accounts,
	}
	if err := h.templates.Render(w, "pages/users.html", data); err != nil {
		h.logger.Error("render users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

// ShowAccountsForTest exposes the HTML handler for tests.
func (h *Handler) ShowAccountsForTest(w http.ResponseWriter, r *http.Request) {
	h.showAccounts(w, r)
}

// ListAccountsForTest exposes the JSON handler for tests.
func (h *Handler) ListAccountsForTest(w http.ResponseWriter, r *http.Request) {
	h.listAccounts(w, r)
}
