package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mandate/internal/mandate/models"
	"mandate/internal/mandate/verify"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/audit"
	"mandate/pkg/platform/httputil"
	authmw "mandate/pkg/platform/middleware/auth"
	"mandate/pkg/requestcontext"
)

// Service defines the mandate operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, data models.SubmitterData) (*models.Mandate, error)
	Track(ctx context.Context, reference string) (*models.Tracking, error)
	PublicDocument(ctx context.Context, reference string) (*models.Document, error)

	Get(ctx context.Context, mandateID id.MandateID) (*models.Mandate, error)
	List(ctx context.Context, filter models.Filter) (*models.Page, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	History(ctx context.Context, mandateID id.MandateID) ([]audit.Event, error)
	Document(ctx context.Context, mandateID id.MandateID) (*models.Document, error)

	ApproveByAdmin(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error)
	ApproveBySuperAdmin(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error)
	Reject(ctx context.Context, mandateID id.MandateID, actor models.Actor, reason string) (*models.Mandate, error)
	IssueDocument(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Document, error)
	UpdateSubmitter(ctx context.Context, mandateID id.MandateID, actor models.Actor, data models.SubmitterData) (*models.Mandate, error)
}

// Verifier checks signed verification links printed on documents.
type Verifier interface {
	Verify(ctx context.Context, reference, signature string) (*verify.Verification, error)
}

// Handler wires mandate endpoints to the mandate service.
type Handler struct {
	service  Service
	verifier Verifier
	logger   *slog.Logger
}

func New(service Service, verifier Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
	}
}

// RegisterPublic mounts the unauthenticated citizen endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/mandates", h.HandleSubmit)
	r.Get("/mandates/{reference}", h.HandleTrack)
	r.Get("/mandates/{reference}/document", h.HandlePublicDocument)
	r.Get("/verify/{reference}", h.HandleVerify)
}

// RegisterAdmin mounts the staff endpoints. The caller is expected to have
// authenticated the request already.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/mandates", h.HandleList)
	r.Get("/mandates/{id}", h.HandleGet)
	r.Get("/mandates/{id}/history", h.HandleHistory)
	r.Get("/mandates/{id}/document", h.HandleDocument)
	r.Post("/mandates/{id}/document", h.HandleIssueDocument)
	r.Post("/mandates/{id}/approve", h.HandleApprove)
	r.Post("/mandates/{id}/reject", h.HandleReject)
	r.Put("/mandates/{id}/submitter", h.HandleUpdateSubmitter)
	r.With(authmw.RequireRole(h.logger, id.RoleSuperAdmin)).
		Post("/mandates/{id}/final-approve", h.HandleFinalApprove)
}

// HandleSubmit handles POST /mandates.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.Submit(ctx, req.Submitter())
	if err != nil {
		h.logger.ErrorContext(ctx, "mandate submission failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mandate submitted",
		"request_id", requestID,
		"reference_number", m.ReferenceNumber,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromSubmitted(m))
}

// HandleTrack handles GET /mandates/{reference}.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracking, err := h.service.Track(ctx, chi.URLParam(r, "reference"))
	if err != nil {
		h.writeFailure(ctx, w, "mandate tracking failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tracking)
}

// HandlePublicDocument handles GET /mandates/{reference}/document.
func (h *Handler) HandlePublicDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.service.PublicDocument(ctx, chi.URLParam(r, "reference"))
	if err != nil {
		h.writeFailure(ctx, w, "public document download failed", err)
		return
	}
	writePDF(w, doc)
}

// HandleVerify handles GET /verify/{reference}?sig=...
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.verifier.Verify(ctx, chi.URLParam(r, "reference"), r.URL.Query().Get("sig"))
	if err != nil {
		h.writeFailure(ctx, w, "mandate verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleDashboard handles GET /dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard, err := h.service.Dashboard(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "dashboard failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard)
}

// HandleList handles GET /mandates.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.service.List(ctx, filter)
	if err != nil {
		h.writeFailure(ctx, w, "mandate listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPage(page, filter, actor))
}

// HandleGet handles GET /mandates/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	mandateID, ok := mandateIDParam(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(ctx, mandateID)
	if err != nil {
		h.writeFailure(ctx, w, "mandate lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMandate(*m, actor))
}

// HandleHistory handles GET /mandates/{id}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mandateID, ok := mandateIDParam(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(ctx, mandateID)
	if err != nil {
		h.writeFailure(ctx, w, "mandate history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{MandateID: mandateID.String(), Events: events})
}

// HandleDocument handles GET /mandates/{id}/document.
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mandateID, ok := mandateIDParam(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Document(ctx, mandateID)
	if err != nil {
		h.writeFailure(ctx, w, "document download failed", err)
		return
	}
	writePDF(w, doc)
}

// HandleIssueDocument handles POST /mandates/{id}/document.
func (h *Handler) HandleIssueDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	mandateID, ok := mandateIDParam(w, r)
	if !ok {
		return
	}
	doc, err := h.service.IssueDocument(ctx, mandateID, actor)
	if err != nil {
		h.writeFailure(ctx, w, "document issuance failed", err)
		return
	}
	writePDF(w, doc)
}

// HandleApprove handles POST /mandates/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "admin approval", func(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
		return h.service.ApproveByAdmin(ctx, mandateID, actor)
	})
}

// HandleFinalApprove handles POST /mandates/{id}/final-approve.
func (h *Handler) HandleFinalApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "final approval", func(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
		return h.service.ApproveBySuperAdmin(ctx, mandateID, actor)
	})
}

// HandleReject handles POST /mandates/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.decide(w, r, "rejection", func(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
		return h.service.Reject(ctx, mandateID, actor, req.Reason)
	})
}

// HandleUpdateSubmitter handles PUT /mandates/{id}/submitter.
func (h *Handler) HandleUpdateSubmitter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubmitterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.decide(w, r, "submitter correction", func(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error) {
		return h.service.UpdateSubmitter(ctx, mandateID, actor, req.Submitter())
	})
}

type decision func(ctx context.Context, mandateID id.MandateID, actor models.Actor) (*models.Mandate, error)

// decide runs a staff decision on the mandate named in the path and writes
// the updated record.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, apply decision) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	mandateID, ok := mandateIDParam(w, r)
	if !ok {
		return
	}

	m, err := apply(ctx, mandateID, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "mandate "+action+" failed",
			"request_id", requestID,
			"mandate_id", mandateID.String(),
			"staff_id", actor.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mandate "+action+" applied",
		"request_id", requestID,
		"mandate_id", mandateID.String(),
		"reference_number", m.ReferenceNumber,
		"status", string(m.Status),
		"staff_id", actor.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromMandate(*m, actor))
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	ctx := r.Context()
	staffID := requestcontext.StaffID(ctx)
	if staffID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return models.Actor{}, false
	}
	return models.Actor{ID: staffID, Role: requestcontext.Role(ctx)}, true
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func mandateIDParam(w http.ResponseWriter, r *http.Request) (id.MandateID, bool) {
	mandateID, err := id.ParseMandateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.MandateID{}, false
	}
	return mandateID, true
}

func writePDF(w http.ResponseWriter, doc *models.Document) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}
