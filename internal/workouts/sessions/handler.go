package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/gymsessions/internal/auth"
	"github.com/2beens/gymsessions/internal/middleware"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=sessions_mocks_test.go -package=sessions_test

type service interface {
	Start(ctx context.Context, userID uuid.UUID, templateID int) (int, error)
	GetInProgress(ctx context.Context, userID uuid.UUID) (*Session, error)
	Get(ctx context.Context, userID uuid.UUID, sessionID int) (*Session, error)
	Complete(ctx context.Context, userID uuid.UUID, sessionID int, params CompleteParams) error
	Discard(ctx context.Context, userID uuid.UUID, sessionID int) error
	Update(ctx context.Context, userID uuid.UUID, sessionID int, params UpdateParams) error
	ReconcileExercises(ctx context.Context, userID uuid.UUID, sessionID int, desired []int) error
	AddSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID int, measurement Measurement) (int, error)
	UpdateSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID, setID int, measurement Measurement) error
	DeleteSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID, setID int) error
	History(ctx context.Context, userID uuid.UUID, params HistoryParams) (*HistoryPage, error)
}

type StartRequest struct {
	TemplateID int `json:"templateId"`
}

type StartResponse struct {
	SessionID int `json:"sessionId"`
}

type ReconcileRequest struct {
	ExerciseDefinitionIDs []int `json:"exerciseDefinitionIds"`
}

type AddSetResponse struct {
	SetID int `json:"setId"`
}

type UpdatedResponse struct {
	UpdatedID int `json:"updatedId"`
}

type DeletedResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the session routes. Mutating routes go through the rate limiter.
func (h *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	writesAllowedPerMin int,
) {
	readRouter := mainRouter.PathPrefix("/sessions").Methods("GET", "OPTIONS").Subrouter()
	readRouter.HandleFunc("/in-progress", h.HandleGetInProgress).Name("session-in-progress")
	readRouter.HandleFunc("/history", h.HandleHistory).Name("session-history")
	readRouter.HandleFunc("/{id:[0-9]+}", h.HandleGet).Name("session-get")

	writeRouter := mainRouter.PathPrefix("/sessions").Methods("POST", "PUT", "DELETE", "OPTIONS").Subrouter()
	writeRouter.HandleFunc("", h.HandleStart).Methods("POST", "OPTIONS").Name("session-start")
	writeRouter.HandleFunc("/{id:[0-9]+}", h.HandleUpdate).Methods("PUT", "OPTIONS").Name("session-update")
	writeRouter.HandleFunc("/{id:[0-9]+}", h.HandleDiscard).Methods("DELETE", "OPTIONS").Name("session-discard")
	writeRouter.HandleFunc("/{id:[0-9]+}/complete", h.HandleComplete).Methods("POST", "OPTIONS").Name("session-complete")
	writeRouter.HandleFunc("/{id:[0-9]+}/exercises", h.HandleReconcileExercises).Methods("PUT", "OPTIONS").Name("session-exercises")
	writeRouter.HandleFunc("/{id:[0-9]+}/exercises/{exerciseId:[0-9]+}/sets", h.HandleAddSet).Methods("POST", "OPTIONS").Name("set-add")
	writeRouter.HandleFunc("/{id:[0-9]+}/exercises/{exerciseId:[0-9]+}/sets/{setId:[0-9]+}", h.HandleUpdateSet).Methods("PUT", "OPTIONS").Name("set-update")
	writeRouter.HandleFunc("/{id:[0-9]+}/exercises/{exerciseId:[0-9]+}/sets/{setId:[0-9]+}", h.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("set-delete")

	if rateLimiter != nil {
		writeRouter.Use(middleware.RateLimit(rateLimiter, "sessions-write", writesAllowedPerMin, metricsManager))
	}
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.start")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req StartRequest
	if !decodeJSONBody(w, r, &req, false) {
		return
	}
	if req.TemplateID <= 0 {
		http.Error(w, "error, template id missing", http.StatusBadRequest)
		return
	}

	sessionID, err := h.service.Start(ctx, userID, req.TemplateID)
	if err != nil {
		writeServiceError(w, "start session", err)
		return
	}

	log.Debugf("user %s started session %d", userID, sessionID)
	writeJSON(w, StartResponse{SessionID: sessionID}, http.StatusCreated)
}

func (h *Handler) HandleGetInProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.in_progress")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, err := h.service.GetInProgress(ctx, userID)
	if err != nil {
		writeServiceError(w, "get in progress session", err)
		return
	}

	// null body when there is no session in progress
	writeJSON(w, session, http.StatusOK)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.get")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.service.Get(ctx, userID, sessionID)
	if err != nil {
		writeServiceError(w, "get session", err)
		return
	}

	writeJSON(w, session, http.StatusOK)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.complete")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var params CompleteParams
	if !decodeJSONBody(w, r, &params, true) {
		return
	}

	if err := h.service.Complete(ctx, userID, sessionID, params); err != nil {
		writeServiceError(w, "complete session", err)
		return
	}

	writeJSON(w, UpdatedResponse{UpdatedID: sessionID}, http.StatusOK)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.update")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var params UpdateParams
	if !decodeJSONBody(w, r, &params, false) {
		return
	}

	if err := h.service.Update(ctx, userID, sessionID, params); err != nil {
		writeServiceError(w, "update session", err)
		return
	}

	writeJSON(w, UpdatedResponse{UpdatedID: sessionID}, http.StatusOK)
}

func (h *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.discard")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Discard(ctx, userID, sessionID); err != nil {
		writeServiceError(w, "discard session", err)
		return
	}

	writeJSON(w, DeletedResponse{DeletedID: sessionID}, http.StatusOK)
}

func (h *Handler) HandleReconcileExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.reconcile_exercises")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ReconcileRequest
	if !decodeJSONBody(w, r, &req, false) {
		return
	}
	if req.ExerciseDefinitionIDs == nil {
		http.Error(w, "error, exercise definition ids missing", http.StatusBadRequest)
		return
	}

	if err := h.service.ReconcileExercises(ctx, userID, sessionID, req.ExerciseDefinitionIDs); err != nil {
		writeServiceError(w, "reconcile session exercises", err)
		return
	}

	writeJSON(w, UpdatedResponse{UpdatedID: sessionID}, http.StatusOK)
}

func (h *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.sets.add")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseId")
	if !ok {
		return
	}

	var m Measurement
	if !decodeJSONBody(w, r, &m, false) {
		return
	}

	setID, err := h.service.AddSet(ctx, userID, sessionID, exerciseID, m)
	if err != nil {
		writeServiceError(w, "add set", err)
		return
	}

	writeJSON(w, AddSetResponse{SetID: setID}, http.StatusCreated)
}

func (h *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.sets.update")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseId")
	if !ok {
		return
	}
	setID, ok := pathID(w, r, "setId")
	if !ok {
		return
	}

	var m Measurement
	if !decodeJSONBody(w, r, &m, false) {
		return
	}

	if err := h.service.UpdateSet(ctx, userID, sessionID, exerciseID, setID, m); err != nil {
		writeServiceError(w, "update set", err)
		return
	}

	writeJSON(w, UpdatedResponse{UpdatedID: setID}, http.StatusOK)
}

func (h *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.sets.delete")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	exerciseID, ok := pathID(w, r, "exerciseId")
	if !ok {
		return
	}
	setID, ok := pathID(w, r, "setId")
	if !ok {
		return
	}

	if err := h.service.DeleteSet(ctx, userID, sessionID, exerciseID, setID); err != nil {
		writeServiceError(w, "delete set", err)
		return
	}

	writeJSON(w, DeletedResponse{DeletedID: setID}, http.StatusOK)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.history")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	params, err := historyParamsFromQuery(r)
	if err != nil {
		log.Tracef("history params: %s", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.service.History(ctx, userID, params)
	if err != nil {
		writeServiceError(w, "session history", err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

func historyParamsFromQuery(r *http.Request) (HistoryParams, error) {
	query := r.URL.Query()
	params := HistoryParams{
		SortBy:        SortBy(query.Get("sortBy")),
		SortDirection: SortDirection(query.Get("sortDirection")),
		Search:        query.Get("search"),
		Cursor:        query.Get("cursor"),
	}

	optionalInt := func(name string) (*int, error) {
		raw := query.Get(name)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("error, " + name + " NaN")
		}
		return &v, nil
	}

	var err error
	if params.LocationID, err = optionalInt("locationId"); err != nil {
		return HistoryParams{}, err
	}
	if params.MinRating, err = optionalInt("minRating"); err != nil {
		return HistoryParams{}, err
	}
	pageSize, err := optionalInt("pageSize")
	if err != nil {
		return HistoryParams{}, err
	}
	if pageSize != nil {
		params.PageSize = *pageSize
	}

	return params, nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		http.Error(w, "error, "+name+" empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if allowEmpty && r.ContentLength <= 0 {
			return true
		}
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		log.Tracef("unmarshal json params: %s", err)
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeServiceError maps service errors to status codes. Anything that is not a
// not-found or validation error is logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Tracef("%s: %s", op, err)
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrValidation):
		log.Tracef("%s: %s", op, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	resp, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, status)
}
