package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"members/internal/members/models"
	dErrors "members/pkg/domain-errors"
	"members/pkg/platform/httputil"
	"members/pkg/requestcontext"
)

// Service is the member operation set the REST adapter calls.
type Service interface {
	List(ctx context.Context) ([]*models.Member, error)
	Get(ctx context.Context, id models.MemberID) (*models.Member, error)
	FilterByRole(ctx context.Context, role models.Role) ([]*models.Member, error)
	Create(ctx context.Context, draft models.Draft) (*models.Member, error)
	Update(ctx context.Context, id models.MemberID, draft models.Draft) (*models.Member, error)
	Delete(ctx context.Context, id models.MemberID) (*models.Member, error)
}

// Handler serves the /member resource.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the member routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/member", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/singers", h.handleRoleGroup(models.RoleSinger))
		r.Get("/council", h.handleRoleGroup(models.RoleCouncil))
		r.Get("/roles/{role}", h.handleByRole)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list members", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMembers(list))
}

func (h *Handler) handleRoleGroup(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.filter(w, r, role)
	}
}

func (h *Handler) handleByRole(w http.ResponseWriter, r *http.Request) {
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.filter(w, r, role)
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request, role models.Role) {
	ctx := r.Context()
	list, err := h.service.FilterByRole(ctx, role)
	if err != nil {
		h.fail(ctx, w, "failed to filter members", err, "role", role)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMembers(list))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get member", err, "member_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(m))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MemberRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.service.Create(ctx, req.Draft())
	if err != nil {
		h.fail(ctx, w, "failed to create member", err)
		return
	}
	w.Header().Set("Location", "/member/"+created.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, FromMember(created))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MemberRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	updated, err := h.service.Update(ctx, id, req.Draft())
	if err != nil {
		h.fail(ctx, w, "failed to update member", err, "member_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to delete member", err, "member_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMember(deleted))
}

func parseID(w http.ResponseWriter, r *http.Request) (models.MemberID, bool) {
	id, err := models.ParseMemberID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// fail logs at WARN for caller errors and ERROR for internal ones, then writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
