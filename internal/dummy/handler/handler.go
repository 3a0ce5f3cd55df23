package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dummyapi/internal/dummy/models"
	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/platform/httputil"
	"dummyapi/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the record operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	GetByID(ctx context.Context, id models.DummyID) (*models.Dummy, error)
	GetByNationalID(ctx context.Context, nationalID int64) (*models.Dummy, error)
	List(ctx context.Context) ([]*models.Dummy, error)
	Create(ctx context.Context, d *models.Dummy) (*models.Dummy, error)
	Update(ctx context.Context, d *models.Dummy) (*models.Dummy, error)
	Delete(ctx context.Context, id models.DummyID) error
	FindByCriteria(ctx context.Context, criteria *models.Dummy) (*models.Dummy, error)
	FilterByCriteria(ctx context.Context, criteria *models.Dummy) ([]*models.Dummy, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the record routes under /dummy. The GET routes that take a
// JSON body are kept for existing clients; the POST search routes are the
// body-friendly equivalents.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dummy", func(r chi.Router) {
		r.Get("/", h.HandleFindByCriteria)
		r.Post("/", h.HandleCreate)
		r.Put("/", h.HandleUpdate)
		r.Get("/dummy", h.HandleList)
		r.Get("/list", h.HandleFilterByCriteria)
		r.Post("/search", h.HandleFindByCriteria)
		r.Post("/search/list", h.HandleFilterByCriteria)
		r.Get("/dni/{dni}", h.HandleGetByNationalID)
		r.Get("/{id}", h.HandleGetByID)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList returns every record.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dummies, err := h.service.List(ctx)
	if err != nil {
		h.fail(w, r, "list dummies failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponses(dummies))
}

// HandleGetByID returns one record by path id.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	d, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, "get dummy failed", err, "dummy_id", int64(id))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

// HandleGetByNationalID returns the record holding the path national id.
func (h *Handler) HandleGetByNationalID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dni, err := strconv.ParseInt(chi.URLParam(r, "dni"), 10, 64)
	if err != nil {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid national id"))
		return
	}

	d, err := h.service.GetByNationalID(ctx, dni)
	if err != nil {
		h.fail(w, r, "get dummy by national id failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

// HandleCreate validates and stores a new record.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[DummyRequest](w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.service.Create(ctx, req.toModel())
	if err != nil {
		h.fail(w, r, "create dummy failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

// HandleUpdate replaces a record as a whole.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[DummyRequest](w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.service.Update(ctx, req.toModel())
	if err != nil {
		h.fail(w, r, "update dummy failed", err, "dummy_id", req.ID)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

// HandleDelete removes a record and confirms in plain text.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, r, "delete dummy failed", err, "dummy_id", int64(id))
		return
	}

	httputil.WriteText(w, http.StatusOK, fmt.Sprintf("dummy id %d deleted successfully", id))
}

// HandleFindByCriteria resolves one record from an id or a name.
func (h *Handler) HandleFindByCriteria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[DummyRequest](w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.service.FindByCriteria(ctx, req.toModel())
	if err != nil {
		h.fail(w, r, "find dummy failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(d))
}

// HandleFilterByCriteria returns every record matching an id or a name.
func (h *Handler) HandleFilterByCriteria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[DummyRequest](w, r, h.logger)
	if !ok {
		return
	}

	dummies, err := h.service.FilterByCriteria(ctx, req.toModel())
	if err != nil {
		h.fail(w, r, "filter dummies failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponses(dummies))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (models.DummyID, bool) {
	id, err := models.ParseDummyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid dummy id"))
		return 0, false
	}
	return id, true
}

// fail logs at error level for server faults and warn level for client faults,
// then writes the mapped response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	ctx := r.Context()
	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, r, err)
}
