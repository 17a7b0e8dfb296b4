package catalog_test

import (
	"testing"

	"github.com/2beens/gymsessions/internal/workouts/catalog"

	"github.com/stretchr/testify/assert"
)

func TestTypes_IsValid(t *testing.T) {
	assert.True(t, catalog.ImplementKettlebell.IsValid())
	assert.False(t, catalog.ImplementType("trampoline").IsValid())
	assert.True(t, catalog.ExerciseDistanceDuration.IsValid())
	assert.False(t, catalog.ExerciseType("").IsValid())
}

func TestMissingIDs(t *testing.T) {
	definitions := map[int]catalog.ExerciseDefinition{
		1: {ID: 1},
		3: {ID: 3},
	}

	assert.Empty(t, catalog.MissingIDs([]int{1, 3, 1}, definitions))
	assert.Equal(t, []int{4, 2}, catalog.MissingIDs([]int{4, 1, 2, 4}, definitions))
	assert.Empty(t, catalog.MissingIDs(nil, definitions))
}

func TestTemplate_ExerciseDefinitionIDs(t *testing.T) {
	template := catalog.Template{
		Exercises: []catalog.TemplateExerciseRef{
			{ExerciseDefinitionID: 8, Position: 1},
			{ExerciseDefinitionID: 2, Position: 2},
			{ExerciseDefinitionID: 8, Position: 3},
		},
	}
	assert.Equal(t, []int{8, 2, 8}, template.ExerciseDefinitionIDs())
}
