package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ImplementType is the equipment an exercise is performed with.
type ImplementType string

const (
	ImplementBarbell    ImplementType = "barbell"
	ImplementDumbbell   ImplementType = "dumbbell"
	ImplementMachine    ImplementType = "machine"
	ImplementCable      ImplementType = "cable"
	ImplementKettlebell ImplementType = "kettlebell"
	ImplementBand       ImplementType = "band"
	ImplementBodyweight ImplementType = "bodyweight"
	ImplementOther      ImplementType = "other"
)

func (it ImplementType) IsValid() bool {
	switch it {
	case ImplementBarbell,
		ImplementDumbbell,
		ImplementMachine,
		ImplementCable,
		ImplementKettlebell,
		ImplementBand,
		ImplementBodyweight,
		ImplementOther:
		return true
	default:
		return false
	}
}

// ExerciseType says which measurements are relevant for a set of the exercise.
type ExerciseType string

const (
	ExerciseWeightReps       ExerciseType = "weight_reps"
	ExerciseReps             ExerciseType = "reps"
	ExerciseDuration         ExerciseType = "duration"
	ExerciseDistance         ExerciseType = "distance"
	ExerciseDistanceDuration ExerciseType = "distance_duration"
)

func (et ExerciseType) IsValid() bool {
	switch et {
	case ExerciseWeightReps,
		ExerciseReps,
		ExerciseDuration,
		ExerciseDistance,
		ExerciseDistanceDuration:
		return true
	default:
		return false
	}
}

type ExerciseDefinition struct {
	ID            int           `json:"id"`
	UserID        uuid.UUID     `json:"-"`
	Name          string        `json:"name"`
	ImplementType ImplementType `json:"implementType"`
	ExerciseType  ExerciseType  `json:"exerciseType"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type TemplateExerciseRef struct {
	ExerciseDefinitionID int `json:"exerciseDefinitionId"`
	Position             int `json:"position"`
}

// Template is a reusable workout blueprint. Exercises are ordered by position.
type Template struct {
	ID        int                   `json:"id"`
	UserID    uuid.UUID             `json:"-"`
	Name      string                `json:"name"`
	Exercises []TemplateExerciseRef `json:"exercises"`
	CreatedAt time.Time             `json:"createdAt"`
}

// ExerciseDefinitionIDs returns the referenced definition ids in position order.
func (t *Template) ExerciseDefinitionIDs() []int {
	ids := make([]int, 0, len(t.Exercises))
	for _, ref := range t.Exercises {
		ids = append(ids, ref.ExerciseDefinitionID)
	}
	return ids
}

type Location struct {
	ID        int       `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
