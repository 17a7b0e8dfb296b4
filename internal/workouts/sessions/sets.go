package sessions

import (
	"context"
	"fmt"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/internal/workouts/catalog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// lockExercise locks the owning session and resolves the exercise within it.
// Sets of a completed session are read-only.
func lockExercise(ctx context.Context, repo *Repo, userID uuid.UUID, sessionID, exerciseID int) (*SessionExercise, error) {
	session, err := repo.LockSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, ErrSessionCompleted
	}
	return repo.GetExercise(ctx, sessionID, exerciseID)
}

// AddSet appends a set to the end of the exercise and returns its id.
func (s *Service) AddSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID int, m Measurement) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.sets.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("session.id", sessionID),
		attribute.Int("exercise.id", exerciseID),
	)

	if err := m.Validate(); err != nil {
		return 0, err
	}

	var setID int
	err = s.inTx(ctx, func(repo *Repo, _ *catalog.Repo) error {
		exercise, err := lockExercise(ctx, repo, userID, sessionID, exerciseID)
		if err != nil {
			return err
		}
		set, err := repo.InsertSet(ctx, exercise.ID, m, s.now())
		if err != nil {
			return err
		}
		setID = set.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("add set to exercise %d: %w", exerciseID, err)
	}

	s.metricsManager.CounterSetsAdded.Inc()
	return setID, nil
}

// UpdateSet replaces the measurements of a set, its position stays.
func (s *Service) UpdateSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID, setID int, m Measurement) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.sets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	if err := m.Validate(); err != nil {
		return err
	}

	err = s.inTx(ctx, func(repo *Repo, _ *catalog.Repo) error {
		exercise, err := lockExercise(ctx, repo, userID, sessionID, exerciseID)
		if err != nil {
			return err
		}
		return repo.UpdateSet(ctx, exercise.ID, setID, m)
	})
	if err != nil {
		return fmt.Errorf("update set %d: %w", setID, err)
	}
	return nil
}

// DeleteSet removes a set. Remaining sets of the exercise are renumbered in the same tx.
func (s *Service) DeleteSet(ctx context.Context, userID uuid.UUID, sessionID, exerciseID, setID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	err = s.inTx(ctx, func(repo *Repo, _ *catalog.Repo) error {
		exercise, err := lockExercise(ctx, repo, userID, sessionID, exerciseID)
		if err != nil {
			return err
		}
		return repo.DeleteSet(ctx, exercise.ID, setID)
	})
	if err != nil {
		return fmt.Errorf("delete set %d: %w", setID, err)
	}

	s.metricsManager.CounterSetsDeleted.Inc()
	return nil
}
