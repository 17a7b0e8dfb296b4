package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workouts/catalog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Store is what the service needs from the database, *pgxpool.Pool satisfies it.
type Store interface {
	db.Querier
	db.TxBeginner
}

type ServiceParams struct {
	Store          Store
	MetricsManager *metrics.Manager
	// Now is the service clock, time.Now if not set.
	Now                    func() time.Time
	HistoryDefaultPageSize int
	HistoryMaxPageSize     int
}

// Service runs the session lifecycle. Every mutation is one transaction that first
// row-locks the session it works on.
type Service struct {
	store          Store
	repo           *Repo
	catalog        *catalog.Repo
	metricsManager *metrics.Manager
	now            func() time.Time

	historyDefaultPageSize int
	historyMaxPageSize     int
}

func NewService(params ServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:                  params.Store,
		repo:                   NewRepo(params.Store),
		catalog:                catalog.NewRepo(params.Store),
		metricsManager:         params.MetricsManager,
		now:                    now,
		historyDefaultPageSize: params.HistoryDefaultPageSize,
		historyMaxPageSize:     params.HistoryMaxPageSize,
	}
}

// CompleteParams override session fields together with completion. EndedAt defaults to now.
type CompleteParams struct {
	Notes     *string    `json:"notes"`
	Rating    *int       `json:"rating"`
	StartedAt *time.Time `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
}

type UpdateParams struct {
	Notes      *string    `json:"notes"`
	Rating     *int       `json:"rating"`
	LocationID *int       `json:"locationId"`
	StartedAt  *time.Time `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt"`
}

func (s *Service) inTx(ctx context.Context, fn func(repo *Repo, catalogRepo *catalog.Repo) error) error {
	return db.InTx(ctx, s.store, func(tx pgx.Tx) error {
		return fn(s.repo.WithTx(tx), s.catalog.WithTx(tx))
	})
}

// Start snapshots the template into a new in-progress session and returns its id.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, templateID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", templateID))

	var sessionID int
	err = s.inTx(ctx, func(repo *Repo, catalogRepo *catalog.Repo) error {
		template, err := catalogRepo.GetTemplate(ctx, userID, templateID)
		if err != nil {
			return mapCatalogErr(err)
		}

		inProgress, err := repo.GetInProgress(ctx, userID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if inProgress != nil {
			return fmt.Errorf("%w: session %d", ErrSessionInProgress, inProgress.ID)
		}

		desired := template.ExerciseDefinitionIDs()
		definitions, err := catalogRepo.GetExerciseDefinitions(ctx, userID, desired)
		if err != nil {
			return err
		}
		if missing := catalog.MissingIDs(desired, definitions); len(missing) > 0 {
			return fmt.Errorf("exercise definitions %v: %w", missing, ErrNotFound)
		}

		now := s.now()
		session := &Session{
			UserID:     userID,
			TemplateID: &template.ID,
			Status:     StatusInProgress,
			Name:       template.Name,
			StartedAt:  now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		// the partial unique index catches a concurrent start that passed the check above
		if err := repo.InsertSession(ctx, session); err != nil {
			return err
		}

		plan := PlanReconcile(nil, desired)
		if err := applyReconcile(ctx, repo, session.ID, plan, definitions); err != nil {
			return err
		}

		sessionID = session.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}

	s.metricsManager.CounterSessionsStarted.Inc()
	log.Debugf("session %d started from template %d", sessionID, templateID)
	return sessionID, nil
}

// GetInProgress returns the in-progress session of the user with its exercise tree, or nil if there is none.
func (s *Service) GetInProgress(ctx context.Context, userID uuid.UUID) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.get_in_progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.repo.GetInProgress(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.LoadTree(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID, sessionID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.LoadTree(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete flips an in-progress session to completed. Completing twice is rejected.
func (s *Service) Complete(ctx context.Context, userID uuid.UUID, sessionID int, params CompleteParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	if err := validateRating(params.Rating); err != nil {
		return err
	}

	err = s.inTx(ctx, func(repo *Repo, _ *catalog.Repo) error {
		session, err := repo.LockSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return ErrSessionCompleted
		}

		now := s.now()
		if params.Notes != nil {
			session.Notes = *params.Notes
		}
		if params.Rating != nil {
			session.Rating = params.Rating
		}
		if params.StartedAt != nil {
			session.StartedAt = *params.StartedAt
		}
		endedAt := now
		if params.EndedAt != nil {
			endedAt = *params.EndedAt
		}
		session.EndedAt = &endedAt
		if err := checkTimeRange(session); err != nil {
			return err
		}

		session.Status = StatusCompleted
		session.UpdatedAt = now
		return repo.UpdateSession(ctx, session)
	})
	if err != nil {
		return fmt.Errorf("complete session %d: %w", sessionID, err)
	}

	s.metricsManager.CounterSessionsCompleted.Inc()
	return nil
}

// Discard deletes an in-progress session with its whole tree. Completed sessions cannot be discarded.
func (s *Service) Discard(ctx context.Context, userID uuid.UUID, sessionID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.discard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	err = s.inTx(ctx, func(repo *Repo, _ *catalog.Repo) error {
		session, err := repo.LockSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return ErrSessionCompleted
		}
		return repo.DeleteSessionTree(ctx, userID, sessionID)
	})
	if err != nil {
		return fmt.Errorf("discard session %d: %w", sessionID, err)
	}

	s.metricsManager.CounterSessionsDiscarded.Inc()
	return nil
}

// Update changes notes, rating, time range or location, in either state.
// A new location is snapshotted by name, later renames do not reach the session.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, sessionID int, params UpdateParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	if err := validateRating(params.Rating); err != nil {
		return err
	}

	err = s.inTx(ctx, func(repo *Repo, catalogRepo *catalog.Repo) error {
		session, err := repo.LockSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}

		// ended_at stays null until Complete sets it.
		if params.EndedAt != nil && !session.IsCompleted() {
			return ErrSessionNotCompleted
		}
		if params.Notes != nil {
			session.Notes = *params.Notes
		}
		if params.Rating != nil {
			session.Rating = params.Rating
		}
		if params.StartedAt != nil {
			session.StartedAt = *params.StartedAt
		}
		if params.EndedAt != nil {
			session.EndedAt = params.EndedAt
		}
		if err := checkTimeRange(session); err != nil {
			return err
		}

		if params.LocationID != nil && !session.hasLocation(*params.LocationID) {
			location, err := catalogRepo.GetLocation(ctx, userID, *params.LocationID)
			if err != nil {
				return mapCatalogErr(err)
			}
			session.Location = &LocationSnapshot{
				ID:   &location.ID,
				Name: location.Name,
			}
		}

		session.UpdatedAt = s.now()
		return repo.UpdateSession(ctx, session)
	})
	if err != nil {
		return fmt.Errorf("update session %d: %w", sessionID, err)
	}
	return nil
}

// ReconcileExercises replaces the exercise list of an in-progress session with the desired one.
// Nothing is written unless every desired definition exists and belongs to the user.
func (s *Service) ReconcileExercises(ctx context.Context, userID uuid.UUID, sessionID int, desired []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.reconcile_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("session.id", sessionID),
		attribute.Int("desired.count", len(desired)),
	)

	err = s.inTx(ctx, func(repo *Repo, catalogRepo *catalog.Repo) error {
		session, err := repo.LockSession(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return ErrSessionCompleted
		}

		definitions, err := catalogRepo.GetExerciseDefinitions(ctx, userID, desired)
		if err != nil {
			return err
		}
		if missing := catalog.MissingIDs(desired, definitions); len(missing) > 0 {
			return fmt.Errorf("exercise definitions %v: %w", missing, ErrNotFound)
		}

		current, err := repo.ListExercises(ctx, sessionID)
		if err != nil {
			return err
		}
		plan := PlanReconcile(current, desired)
		if plan.IsNoop(current) {
			return nil
		}
		log.Tracef("session %d reconcile: keep %d, add %d, remove %d",
			sessionID, len(plan.Keep), len(plan.Add), len(plan.Remove))

		return applyReconcile(ctx, repo, sessionID, plan, definitions)
	})
	if err != nil {
		return fmt.Errorf("reconcile session %d exercises: %w", sessionID, err)
	}

	s.metricsManager.CounterExercisesReconciled.Inc()
	return nil
}

// History pages through the completed sessions of the user.
func (s *Service) History(ctx context.Context, userID uuid.UUID, params HistoryParams) (_ *HistoryPage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	q, err := normalizeHistoryParams(params, s.historyDefaultPageSize, s.historyMaxPageSize)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	items, err := s.repo.History(ctx, userID, q, q.pageSize+1)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	s.metricsManager.HistHistoryQueryDuration.
		WithLabelValues(string(q.sortBy), string(q.direction)).
		Observe(time.Since(start).Seconds())

	return buildHistoryPage(items, q)
}

func (s *Session) hasLocation(locationID int) bool {
	return s.Location != nil && s.Location.ID != nil && *s.Location.ID == locationID
}

func checkTimeRange(session *Session) error {
	if session.EndedAt != nil && session.EndedAt.Before(session.StartedAt) {
		return ErrInvalidTimeRange
	}
	return nil
}

func mapCatalogErr(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w (%v)", ErrNotFound, err)
	}
	return err
}
