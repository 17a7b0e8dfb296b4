package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const inProgressIndexName = "ux_workout_session_user_in_progress"

const sessionColumns = `
	id, user_id, template_id, status, name, location_id, location_name,
	notes, rating::int, started_at, ended_at, created_at, updated_at`

// Repo persists the session tree. Reads and writes are always scoped by the owning user,
// either directly or through a session that was already checked to belong to the user.
type Repo struct {
	db db.Querier
}

func NewRepo(q db.Querier) *Repo {
	return &Repo{
		db: q,
	}
}

// WithTx returns a repo bound to the given transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{
		db: tx,
	}
}

func scanSession(row pgx.Row) (*Session, error) {
	s := &Session{}
	var locationID *int
	var locationName *string
	if err := row.Scan(
		&s.ID, &s.UserID, &s.TemplateID, &s.Status, &s.Name, &locationID, &locationName,
		&s.Notes, &s.Rating, &s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Location = locationSnapshot(locationID, locationName)
	s.Exercises = make([]SessionExercise, 0)
	return s, nil
}

func (r *Repo) InsertSession(ctx context.Context, s *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var locationID *int
	var locationName *string
	if s.Location != nil {
		locationID = s.Location.ID
		locationName = &s.Location.Name
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO workout_session (
				user_id, template_id, status, name, location_id, location_name,
				notes, rating, started_at, ended_at, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id;`,
		s.UserID, s.TemplateID, s.Status, s.Name, locationID, locationName,
		s.Notes, s.Rating, s.StartedAt, s.EndedAt, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if pkg.UniqueViolationConstraint(err) == inProgressIndexName {
			return ErrSessionInProgress
		}
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession returns the session without its exercises.
func (r *Repo) GetSession(ctx context.Context, userID uuid.UUID, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", id))

	return r.getSession(ctx, userID, id, false)
}

// LockSession is GetSession that also row-locks the session until the surrounding tx ends.
// All mutations of one session tree are serialized through it.
func (r *Repo) LockSession(ctx context.Context, userID uuid.UUID, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.lock")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", id))

	return r.getSession(ctx, userID, id, true)
}

func (r *Repo) getSession(ctx context.Context, userID uuid.UUID, id int, lock bool) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM workout_session WHERE user_id = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	s, err := scanSession(r.db.QueryRow(ctx, query, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("session [query row]: %w", err)
	}
	return s, nil
}

func (r *Repo) GetInProgress(ctx context.Context, userID uuid.UUID) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get_in_progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s, err := scanSession(r.db.QueryRow(
		ctx,
		`SELECT `+sessionColumns+` FROM workout_session WHERE user_id = $1 AND status = $2`,
		userID, StatusInProgress,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("in progress session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("in progress session [query row]: %w", err)
	}
	return s, nil
}

func (r *Repo) UpdateSession(ctx context.Context, s *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", s.ID))

	var locationID *int
	var locationName *string
	if s.Location != nil {
		locationID = s.Location.ID
		locationName = &s.Location.Name
	}

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE workout_session
			SET status = $3, notes = $4, rating = $5, location_id = $6, location_name = $7,
				started_at = $8, ended_at = $9, updated_at = $10
			WHERE user_id = $1 AND id = $2;`,
		s.UserID, s.ID, s.Status, s.Notes, s.Rating, locationID, locationName,
		s.StartedAt, s.EndedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", s.ID, ErrNotFound)
	}
	return nil
}

// DeleteSessionTree removes the session with all its exercises and their sets, children first.
func (r *Repo) DeleteSessionTree(ctx context.Context, userID uuid.UUID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.delete_tree")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", id))

	if _, err := r.db.Exec(
		ctx,
		`
			DELETE FROM session_set
			WHERE session_exercise_id IN (
				SELECT e.id
				FROM session_exercise e
				JOIN workout_session s ON s.id = e.session_id
				WHERE s.user_id = $1 AND s.id = $2
			);`,
		userID, id,
	); err != nil {
		return fmt.Errorf("delete session sets: %w", err)
	}

	if _, err := r.db.Exec(
		ctx,
		`
			DELETE FROM session_exercise
			WHERE session_id IN (SELECT id FROM workout_session WHERE user_id = $1 AND id = $2);`,
		userID, id,
	); err != nil {
		return fmt.Errorf("delete session exercises: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_session WHERE user_id = $1 AND id = $2;`, userID, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListExercises returns the session exercises (without sets) in position order.
func (r *Repo) ListExercises(ctx context.Context, sessionID int) (_ []SessionExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, session_id, exercise_definition_id, name, implement_type, exercise_type, position
			FROM session_exercise
			WHERE session_id = $1
			ORDER BY position;`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("session exercises [query]: %w", err)
	}
	defer rows.Close()

	exercises := make([]SessionExercise, 0)
	for rows.Next() {
		var e SessionExercise
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.ExerciseDefinitionID, &e.Name, &e.ImplementType, &e.ExerciseType, &e.Position,
		); err != nil {
			return nil, fmt.Errorf("session exercises [rows scan]: %w", err)
		}
		e.Sets = make([]SessionSet, 0)
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session exercises [rows]: %w", err)
	}

	return exercises, nil
}

// LoadTree fills the session exercises, each with its sets, both in position order.
func (r *Repo) LoadTree(ctx context.Context, s *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.load_tree")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercises, err := r.ListExercises(ctx, s.ID)
	if err != nil {
		return err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT st.id, st.session_exercise_id, st.position, st.created_at,
				st.weight::float8, st.weight_unit, st.reps, st.duration_seconds,
				st.distance::float8, st.distance_unit, st.bodyweight, st.band_color
			FROM session_set st
			JOIN session_exercise e ON e.id = st.session_exercise_id
			WHERE e.session_id = $1
			ORDER BY st.session_exercise_id, st.position;`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("session sets [query]: %w", err)
	}
	defer rows.Close()

	setsByExercise := make(map[int][]SessionSet, len(exercises))
	for rows.Next() {
		var set SessionSet
		if err := rows.Scan(
			&set.ID, &set.SessionExerciseID, &set.Position, &set.CreatedAt,
			&set.Weight, &set.WeightUnit, &set.Reps, &set.DurationSeconds,
			&set.Distance, &set.DistanceUnit, &set.Bodyweight, &set.BandColor,
		); err != nil {
			return fmt.Errorf("session sets [rows scan]: %w", err)
		}
		setsByExercise[set.SessionExerciseID] = append(setsByExercise[set.SessionExerciseID], set)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("session sets [rows]: %w", err)
	}

	for i := range exercises {
		if sets, ok := setsByExercise[exercises[i].ID]; ok {
			exercises[i].Sets = sets
		}
	}
	s.Exercises = exercises

	return nil
}

// InsertExercises stores the given snapshots in one statement and sets their ids.
func (r *Repo) InsertExercises(ctx context.Context, sessionID int, exercises []SessionExercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.exercises.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercises.count", len(exercises)))

	if len(exercises) == 0 {
		return nil
	}

	definitionIDs := make([]*int, len(exercises))
	names := make([]string, len(exercises))
	implementTypes := make([]string, len(exercises))
	exerciseTypes := make([]string, len(exercises))
	positions := make([]int, len(exercises))
	for i, e := range exercises {
		definitionIDs[i] = e.ExerciseDefinitionID
		names[i] = e.Name
		implementTypes[i] = string(e.ImplementType)
		exerciseTypes[i] = string(e.ExerciseType)
		positions[i] = e.Position
	}

	rows, err := r.db.Query(
		ctx,
		`
			INSERT INTO session_exercise (session_id, exercise_definition_id, name, implement_type, exercise_type, position)
			SELECT $1, e.definition_id, e.name, e.implement_type, e.exercise_type, e.position
			FROM unnest($2::int[], $3::text[], $4::text[], $5::text[], $6::int[])
				AS e(definition_id, name, implement_type, exercise_type, position)
			RETURNING id, position;`,
		sessionID, definitionIDs, names, implementTypes, exerciseTypes, positions,
	)
	if err != nil {
		return fmt.Errorf("insert session exercises: %w", err)
	}
	defer rows.Close()

	idByPosition := make(map[int]int, len(exercises))
	for rows.Next() {
		var id, position int
		if err := rows.Scan(&id, &position); err != nil {
			return fmt.Errorf("insert session exercises [rows scan]: %w", err)
		}
		idByPosition[position] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("insert session exercises [rows]: %w", err)
	}

	for i := range exercises {
		exercises[i].ID = idByPosition[exercises[i].Position]
		exercises[i].SessionID = sessionID
	}

	return nil
}

// UpdateExercisePositions rewrites positions of many exercises with a single UPDATE.
func (r *Repo) UpdateExercisePositions(ctx context.Context, sessionID int, ids, positions []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.exercises.reposition")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(positions) {
		return fmt.Errorf("reposition exercises: got %d ids and %d positions", len(ids), len(positions))
	}

	if _, err := r.db.Exec(
		ctx,
		`
			UPDATE session_exercise e
			SET position = u.position
			FROM unnest($2::int[], $3::int[]) AS u(id, position)
			WHERE e.session_id = $1 AND e.id = u.id;`,
		sessionID, ids, positions,
	); err != nil {
		return fmt.Errorf("reposition exercises: %w", err)
	}
	return nil
}

// DeleteExercises removes the given session exercises together with their sets.
func (r *Repo) DeleteExercises(ctx context.Context, sessionID int, ids []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercises.count", len(ids)))

	if len(ids) == 0 {
		return nil
	}

	if _, err := r.db.Exec(
		ctx,
		`
			DELETE FROM session_set
			WHERE session_exercise_id IN (
				SELECT id FROM session_exercise WHERE session_id = $1 AND id = ANY($2::int[])
			);`,
		sessionID, ids,
	); err != nil {
		return fmt.Errorf("delete exercise sets: %w", err)
	}

	if _, err := r.db.Exec(
		ctx,
		`DELETE FROM session_exercise WHERE session_id = $1 AND id = ANY($2::int[]);`,
		sessionID, ids,
	); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	return nil
}

func (r *Repo) GetExercise(ctx context.Context, sessionID, exerciseID int) (_ *SessionExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	e := &SessionExercise{}
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, session_id, exercise_definition_id, name, implement_type, exercise_type, position
			FROM session_exercise
			WHERE session_id = $1 AND id = $2;`,
		sessionID, exerciseID,
	).Scan(&e.ID, &e.SessionID, &e.ExerciseDefinitionID, &e.Name, &e.ImplementType, &e.ExerciseType, &e.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session exercise %d: %w", exerciseID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("session exercise [query row]: %w", err)
	}
	e.Sets = make([]SessionSet, 0)
	return e, nil
}

// InsertSet appends a set to the exercise, at position max + 1.
func (r *Repo) InsertSet(ctx context.Context, exerciseID int, m Measurement, createdAt time.Time) (_ *SessionSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.sets.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	set := &SessionSet{
		SessionExerciseID: exerciseID,
		CreatedAt:         createdAt,
		Measurement:       m,
	}
	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO session_set (
				session_exercise_id, position, weight, weight_unit, reps, duration_seconds,
				distance, distance_unit, bodyweight, band_color, created_at
			)
			SELECT $1, COALESCE(MAX(position), 0) + 1, $2::numeric, $3::text, $4::int, $5::int,
				$6::numeric, $7::text, $8::boolean, $9::text, $10::timestamptz
			FROM session_set
			WHERE session_exercise_id = $1
			RETURNING id, position;`,
		exerciseID, m.Weight, m.WeightUnit, m.Reps, m.DurationSeconds,
		m.Distance, m.DistanceUnit, m.Bodyweight, m.BandColor, createdAt,
	).Scan(&set.ID, &set.Position)
	if err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}
	return set, nil
}

// UpdateSet replaces all measurement fields of the set in place. Position is untouched.
func (r *Repo) UpdateSet(ctx context.Context, exerciseID, setID int, m Measurement) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.sets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	tag, err := r.db.Exec(
		ctx,
		`
			UPDATE session_set
			SET weight = $3, weight_unit = $4, reps = $5, duration_seconds = $6,
				distance = $7, distance_unit = $8, bodyweight = $9, band_color = $10
			WHERE session_exercise_id = $1 AND id = $2;`,
		exerciseID, setID, m.Weight, m.WeightUnit, m.Reps, m.DurationSeconds,
		m.Distance, m.DistanceUnit, m.Bodyweight, m.BandColor,
	)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set %d: %w", setID, ErrNotFound)
	}
	return nil
}

// DeleteSet removes the set and shifts every following set of the exercise one position down.
// Must run inside a tx, so no reader sees the gap.
func (r *Repo) DeleteSet(ctx context.Context, exerciseID, setID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	var position int
	err = r.db.QueryRow(
		ctx,
		`DELETE FROM session_set WHERE session_exercise_id = $1 AND id = $2 RETURNING position;`,
		exerciseID, setID,
	).Scan(&position)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("set %d: %w", setID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	if _, err := r.db.Exec(
		ctx,
		`UPDATE session_set SET position = position - 1 WHERE session_exercise_id = $1 AND position > $2;`,
		exerciseID, position,
	); err != nil {
		return fmt.Errorf("renumber sets: %w", err)
	}
	return nil
}
