package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationError(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_workout_session_user_in_progress"}
	fkErr := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolationError(uniqueErr))
	assert.True(t, IsUniqueViolationError(fmt.Errorf("insert session: %w", uniqueErr)))
	assert.False(t, IsUniqueViolationError(fkErr))
	assert.False(t, IsUniqueViolationError(errors.New("unique violation")))
	assert.False(t, IsUniqueViolationError(nil))

	assert.True(t, IsForeignKeyViolationError(fkErr))
	assert.False(t, IsForeignKeyViolationError(uniqueErr))

	assert.Equal(t, "ux_workout_session_user_in_progress", UniqueViolationConstraint(fmt.Errorf("wrapped: %w", uniqueErr)))
	assert.Empty(t, UniqueViolationConstraint(fkErr))
}
