package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymsessions/internal/db"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNotFound is returned for missing entities and for entities owned by another user.
var ErrNotFound = errors.New("not found")

// Repo reads (and, for tooling and tests, writes) the catalog a session is seeded from.
// Every query filters by the owning user first.
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

func (r *Repo) GetTemplate(ctx context.Context, userID uuid.UUID, id int) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.template.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	template := &Template{}
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, user_id, name, created_at
			FROM workout_template
			WHERE user_id = $1 AND id = $2;`,
		userID, id,
	).Scan(&template.ID, &template.UserID, &template.Name, &template.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("template [query row]: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT exercise_definition_id, position
			FROM workout_template_exercise
			WHERE template_id = $1
			ORDER BY position, id;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("template exercises [query]: %w", err)
	}
	defer rows.Close()

	template.Exercises = make([]TemplateExerciseRef, 0)
	for rows.Next() {
		var ref TemplateExerciseRef
		if err := rows.Scan(&ref.ExerciseDefinitionID, &ref.Position); err != nil {
			return nil, fmt.Errorf("template exercises [rows scan]: %w", err)
		}
		template.Exercises = append(template.Exercises, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template exercises [rows]: %w", err)
	}

	return template, nil
}

// GetExerciseDefinitions returns the definitions with the given ids owned by the user.
// Missing or foreign ids are simply absent from the result.
func (r *Repo) GetExerciseDefinitions(ctx context.Context, userID uuid.UUID, ids []int) (_ map[int]ExerciseDefinition, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise_definitions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("ids.count", len(ids)))

	definitions := make(map[int]ExerciseDefinition, len(ids))
	if len(ids) == 0 {
		return definitions, nil
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, user_id, name, implement_type, exercise_type, created_at
			FROM exercise_definition
			WHERE user_id = $1 AND id = ANY($2::int[]);`,
		userID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("exercise definitions [query]: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var def ExerciseDefinition
		if err := rows.Scan(
			&def.ID, &def.UserID, &def.Name, &def.ImplementType, &def.ExerciseType, &def.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("exercise definitions [rows scan]: %w", err)
		}
		definitions[def.ID] = def
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("exercise definitions [rows]: %w", err)
	}

	return definitions, nil
}

func (r *Repo) GetLocation(ctx context.Context, userID uuid.UUID, id int) (_ *Location, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.location.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("location.id", id))

	location := &Location{}
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, created_at FROM location WHERE user_id = $1 AND id = $2;`,
		userID, id,
	).Scan(&location.ID, &location.UserID, &location.Name, &location.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("location %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("location [query row]: %w", err)
	}

	return location, nil
}

func (r *Repo) AddExerciseDefinition(ctx context.Context, def *ExerciseDefinition) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise_definitions.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if def.Name == "" {
		return errors.New("exercise definition name empty")
	}
	if !def.ImplementType.IsValid() || !def.ExerciseType.IsValid() {
		return fmt.Errorf("invalid implement type [%s] or exercise type [%s]", def.ImplementType, def.ExerciseType)
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		ctx,
		`
			INSERT INTO exercise_definition (user_id, name, implement_type, exercise_type, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		def.UserID, def.Name, def.ImplementType, def.ExerciseType, def.CreatedAt,
	).Scan(&def.ID)
}

func (r *Repo) DeleteExerciseDefinition(ctx context.Context, userID uuid.UUID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.exercise_definitions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise_definition WHERE user_id = $1 AND id = $2;`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("exercise definition %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddTemplate stores the template with its exercises positioned 1..N in the given order.
func (r *Repo) AddTemplate(ctx context.Context, template *Template, exerciseDefinitionIDs []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.template.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if template.Name == "" {
		return errors.New("template name empty")
	}
	if err := r.checkDefinitionsOwned(ctx, template.UserID, exerciseDefinitionIDs); err != nil {
		return err
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now()
	}

	positions := positionsFor(exerciseDefinitionIDs)
	err = r.db.QueryRow(
		ctx,
		`
			WITH t AS (
				INSERT INTO workout_template (user_id, name, created_at)
				VALUES ($1, $2, $3)
				RETURNING id
			), refs AS (
				INSERT INTO workout_template_exercise (template_id, exercise_definition_id, position)
				SELECT t.id, e.definition_id, e.position
				FROM t, unnest($4::int[], $5::int[]) AS e(definition_id, position)
			)
			SELECT id FROM t;`,
		template.UserID, template.Name, template.CreatedAt, exerciseDefinitionIDs, positions,
	).Scan(&template.ID)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	template.Exercises = make([]TemplateExerciseRef, 0, len(exerciseDefinitionIDs))
	for i, defID := range exerciseDefinitionIDs {
		template.Exercises = append(template.Exercises, TemplateExerciseRef{
			ExerciseDefinitionID: defID,
			Position:             positions[i],
		})
	}

	return nil
}

func (r *Repo) RenameTemplate(ctx context.Context, userID uuid.UUID, id int, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.template.rename")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_template SET name = $3 WHERE user_id = $1 AND id = $2;`,
		userID, id, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceTemplateExercises swaps the whole exercise list of a template in one statement.
func (r *Repo) ReplaceTemplateExercises(ctx context.Context, userID uuid.UUID, id int, exerciseDefinitionIDs []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.template.replace_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.checkDefinitionsOwned(ctx, userID, exerciseDefinitionIDs); err != nil {
		return err
	}

	var templateID int
	err = r.db.QueryRow(
		ctx,
		`
			WITH t AS (
				SELECT id FROM workout_template WHERE user_id = $1 AND id = $2
			), removed AS (
				DELETE FROM workout_template_exercise WHERE template_id IN (SELECT id FROM t)
			), added AS (
				INSERT INTO workout_template_exercise (template_id, exercise_definition_id, position)
				SELECT t.id, e.definition_id, e.position
				FROM t, unnest($3::int[], $4::int[]) AS e(definition_id, position)
			)
			SELECT id FROM t;`,
		userID, id, exerciseDefinitionIDs, positionsFor(exerciseDefinitionIDs),
	).Scan(&templateID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return err
}

func (r *Repo) AddLocation(ctx context.Context, location *Location) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.location.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if location.Name == "" {
		return errors.New("location name empty")
	}
	if location.CreatedAt.IsZero() {
		location.CreatedAt = time.Now()
	}

	return r.db.QueryRow(
		ctx,
		`INSERT INTO location (user_id, name, created_at) VALUES ($1, $2, $3) RETURNING id;`,
		location.UserID, location.Name, location.CreatedAt,
	).Scan(&location.ID)
}

func (r *Repo) RenameLocation(ctx context.Context, userID uuid.UUID, id int, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.location.rename")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE location SET name = $3 WHERE user_id = $1 AND id = $2;`,
		userID, id, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("location %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Repo) checkDefinitionsOwned(ctx context.Context, userID uuid.UUID, ids []int) error {
	definitions, err := r.GetExerciseDefinitions(ctx, userID, ids)
	if err != nil {
		return err
	}
	if missing := MissingIDs(ids, definitions); len(missing) > 0 {
		return fmt.Errorf("exercise definitions %v: %w", missing, ErrNotFound)
	}
	return nil
}

// MissingIDs returns the ids (deduplicated, in first-seen order) that have no definition.
func MissingIDs(ids []int, definitions map[int]ExerciseDefinition) []int {
	var missing []int
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := definitions[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func positionsFor(ids []int) []int {
	positions := make([]int, len(ids))
	for i := range ids {
		positions[i] = i + 1
	}
	return positions
}
