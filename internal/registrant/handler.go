package registrant

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mehmetcc/ppdb/internal/authz"
	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/internal/session"
	"github.com/mehmetcc/ppdb/pkg/id"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type RegistrantHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type registrantHandler struct {
	people person.PersonRepo
	gate   *authz.Gate
	logger *zap.Logger
}

func NewRegistrantHandler(people person.PersonRepo, gate *authz.Gate, logger *zap.Logger) RegistrantHandler {
	return &registrantHandler{people: people, gate: gate, logger: logger}
}

// Routes is mounted under /api/dashboard/registrants. Committee members can
// read; only admins delete.
func (h *registrantHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(h.gate.Require(role.Admin, role.Committee)).Get("/", h.List)
	r.With(h.gate.Require(role.Admin, role.Committee)).Get("/{publicID}", h.Get)
	r.With(h.gate.Require(role.Admin)).Delete("/{publicID}", h.Delete)
	return r
}

func (h *registrantHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	people, err := h.people.ListByRole(ctx, role.Applicant, limit, offset)
	if err != nil {
		h.logger.Error("failed to list registrants", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Registrants: people, Limit: limit, Offset: offset})
}

func (h *registrantHandler) Get(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.publicID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.people.GetByPublicID(ctx, pid)
	if err == nil && p.Role != role.Applicant {
		err = person.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			notFound(w)
			return
		}
		h.logger.Error("failed to get registrant", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// Delete soft-deletes a registrant; staff accounts are not reachable here.
// Store failures are reported with their message so the dashboard can show
// them.
func (h *registrantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pid, ok := h.publicID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.people.GetByPublicID(ctx, pid)
	if err == nil && p.Role != role.Applicant {
		err = person.ErrNotFound
	}
	if err == nil {
		err = h.people.SoftDelete(ctx, pid)
	}
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			notFound(w)
			return
		}
		h.logger.Error("failed to delete registrant", zap.String("public_id", pid.String()), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: err.Error(),
		})
		return
	}

	actor, _ := session.FromContext(r.Context())
	h.logger.Info("registrant deleted", zap.String("public_id", pid.String()), zap.String("by", actor.ID))
	httpx.WriteJSON(w, http.StatusOK, deleteResponse{Message: "registrant deleted"})
}

func (h *registrantHandler) publicID(w http.ResponseWriter, r *http.Request) (id.PublicID, bool) {
	pid, err := id.ParsePublicID(chi.URLParam(r, "publicID"))
	if err != nil {
		notFound(w)
		return "", false
	}
	return pid, true
}

func notFound(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
		Code:    httpx.ErrNotFound,
		Message: "registrant not found",
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

type listResponse struct {
	Registrants []person.Person `json:"registrants"`
	Limit       int             `json:"limit"`
	Offset      int             `json:"offset"`
}

type deleteResponse struct {
	Message string `json:"message"`
}
