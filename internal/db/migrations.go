package db

import (
	"context"
	"fmt"
)

// The session tree (session -> exercises -> sets) intentionally has no ON DELETE CASCADE,
// it is torn down explicitly by the sessions repo.
// Positions are unique per parent, but deferred, so renumbering can be done with a single UPDATE.
const schema = `
CREATE TABLE IF NOT EXISTS location
(
    id         SERIAL PRIMARY KEY,
    user_id    UUID                     NOT NULL,
    name       VARCHAR                  NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_location_user ON location (user_id);

CREATE TABLE IF NOT EXISTS exercise_definition
(
    id             SERIAL PRIMARY KEY,
    user_id        UUID                     NOT NULL,
    name           VARCHAR                  NOT NULL,
    implement_type VARCHAR                  NOT NULL,
    exercise_type  VARCHAR                  NOT NULL,
    created_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_exercise_definition_user ON exercise_definition (user_id);

CREATE TABLE IF NOT EXISTS workout_template
(
    id         SERIAL PRIMARY KEY,
    user_id    UUID                     NOT NULL,
    name       VARCHAR                  NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_workout_template_user ON workout_template (user_id);

CREATE TABLE IF NOT EXISTS workout_template_exercise
(
    id                     SERIAL PRIMARY KEY,
    template_id            INTEGER NOT NULL REFERENCES workout_template (id) ON DELETE CASCADE,
    exercise_definition_id INTEGER NOT NULL REFERENCES exercise_definition (id) ON DELETE CASCADE,
    position               INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_workout_template_exercise_template ON workout_template_exercise (template_id, position);

CREATE TABLE IF NOT EXISTS workout_session
(
    id            SERIAL PRIMARY KEY,
    user_id       UUID                     NOT NULL,
    template_id   INTEGER                  REFERENCES workout_template (id) ON DELETE SET NULL,
    status        VARCHAR                  NOT NULL,
    name          VARCHAR                  NOT NULL,
    location_id   INTEGER                  REFERENCES location (id) ON DELETE SET NULL,
    location_name VARCHAR,
    notes         TEXT                     NOT NULL DEFAULT '',
    rating        SMALLINT CHECK (rating BETWEEN 1 AND 5),
    started_at    TIMESTAMP WITH TIME ZONE NOT NULL,
    ended_at      TIMESTAMP WITH TIME ZONE,
    created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
    updated_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_workout_session_user_in_progress
    ON workout_session (user_id) WHERE status = 'in_progress';
CREATE INDEX IF NOT EXISTS ix_workout_session_history_date
    ON workout_session (user_id, status, started_at, id);
CREATE INDEX IF NOT EXISTS ix_workout_session_history_rating
    ON workout_session (user_id, status, (COALESCE(rating, 0)), id);

CREATE TABLE IF NOT EXISTS session_exercise
(
    id                     SERIAL PRIMARY KEY,
    session_id             INTEGER NOT NULL REFERENCES workout_session (id),
    exercise_definition_id INTEGER REFERENCES exercise_definition (id) ON DELETE SET NULL,
    name                   VARCHAR NOT NULL,
    implement_type         VARCHAR NOT NULL,
    exercise_type          VARCHAR NOT NULL,
    position               INTEGER NOT NULL,
    CONSTRAINT ux_session_exercise_position UNIQUE (session_id, position) DEFERRABLE INITIALLY DEFERRED
);

CREATE TABLE IF NOT EXISTS session_set
(
    id                  SERIAL PRIMARY KEY,
    session_exercise_id INTEGER                  NOT NULL REFERENCES session_exercise (id),
    position            INTEGER                  NOT NULL,
    weight              NUMERIC(8, 2),
    weight_unit         VARCHAR,
    reps                INTEGER,
    duration_seconds    INTEGER,
    distance            NUMERIC(10, 3),
    distance_unit       VARCHAR,
    bodyweight          BOOLEAN,
    band_color          VARCHAR,
    created_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
    CONSTRAINT ux_session_set_position UNIQUE (session_exercise_id, position) DEFERRABLE INITIALLY DEFERRED
);
`

// Migrate ensures all tables and indexes exist. Safe to call on every startup.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
