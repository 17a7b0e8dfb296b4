//go:build integration_test || all_tests

package catalog_test

import (
	"context"
	"testing"

	"github.com/2beens/gymsessions/internal/testutil"
	"github.com/2beens/gymsessions/internal/workouts/catalog"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDefinition(t *testing.T, repo *catalog.Repo, userID uuid.UUID) catalog.ExerciseDefinition {
	t.Helper()
	def := catalog.ExerciseDefinition{
		UserID:        userID,
		Name:          gofakeit.Noun(),
		ImplementType: catalog.ImplementDumbbell,
		ExerciseType:  catalog.ExerciseWeightReps,
	}
	require.NoError(t, repo.AddExerciseDefinition(context.Background(), &def))
	require.NotZero(t, def.ID)
	return def
}

func TestRepo_Templates(t *testing.T) {
	ctx := context.Background()
	repo := catalog.NewRepo(testutil.GetDBPool(t))
	userID := uuid.New()

	a := addDefinition(t, repo, userID)
	b := addDefinition(t, repo, userID)

	template := catalog.Template{UserID: userID, Name: "Full body"}
	require.NoError(t, repo.AddTemplate(ctx, &template, []int{b.ID, a.ID, b.ID}))
	require.NotZero(t, template.ID)

	got, err := repo.GetTemplate(ctx, userID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Full body", got.Name)
	assert.Equal(t, []int{b.ID, a.ID, b.ID}, got.ExerciseDefinitionIDs())
	for i, ref := range got.Exercises {
		assert.Equal(t, i+1, ref.Position)
	}

	require.NoError(t, repo.ReplaceTemplateExercises(ctx, userID, template.ID, []int{a.ID}))
	require.NoError(t, repo.RenameTemplate(ctx, userID, template.ID, "Arms"))
	got, err = repo.GetTemplate(ctx, userID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arms", got.Name)
	assert.Equal(t, []int{a.ID}, got.ExerciseDefinitionIDs())

	empty := catalog.Template{UserID: userID, Name: "Empty"}
	require.NoError(t, repo.AddTemplate(ctx, &empty, nil))
	got, err = repo.GetTemplate(ctx, userID, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Exercises)
}

func TestRepo_Ownership(t *testing.T) {
	ctx := context.Background()
	repo := catalog.NewRepo(testutil.GetDBPool(t))
	owner := uuid.New()
	stranger := uuid.New()

	def := addDefinition(t, repo, owner)
	template := catalog.Template{UserID: owner, Name: "Mine"}
	require.NoError(t, repo.AddTemplate(ctx, &template, []int{def.ID}))
	location := catalog.Location{UserID: owner, Name: "Home"}
	require.NoError(t, repo.AddLocation(ctx, &location))

	_, err := repo.GetTemplate(ctx, stranger, template.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = repo.GetLocation(ctx, stranger, location.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, repo.RenameLocation(ctx, stranger, location.ID, "x"), catalog.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteExerciseDefinition(ctx, stranger, def.ID), catalog.ErrNotFound)

	definitions, err := repo.GetExerciseDefinitions(ctx, stranger, []int{def.ID})
	require.NoError(t, err)
	assert.Empty(t, definitions)

	definitions, err = repo.GetExerciseDefinitions(ctx, owner, []int{def.ID, def.ID})
	require.NoError(t, err)
	require.Len(t, definitions, 1)
	assert.Equal(t, def.Name, definitions[def.ID].Name)

	strangerTemplate := catalog.Template{UserID: stranger, Name: "Stolen"}
	err = repo.AddTemplate(ctx, &strangerTemplate, []int{def.ID})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
