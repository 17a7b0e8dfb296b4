package sessions

import (
	"time"

	"github.com/2beens/gymsessions/internal/workouts/catalog"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// LocationSnapshot is the location as it was when it got attached to the session.
// ID becomes nil if the location is deleted later, the name stays.
type LocationSnapshot struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

type Session struct {
	ID         int               `json:"id"`
	UserID     uuid.UUID         `json:"-"`
	TemplateID *int              `json:"templateId"`
	Status     Status            `json:"status"`
	Name       string            `json:"name"`
	Location   *LocationSnapshot `json:"location"`
	Notes      string            `json:"notes"`
	Rating     *int              `json:"rating"`
	StartedAt  time.Time         `json:"startedAt"`
	EndedAt    *time.Time        `json:"endedAt"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Exercises  []SessionExercise `json:"exercises"`
}

func (s *Session) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// SessionExercise is a snapshot of an exercise definition taken when it was added to the session.
// Name and types are never synced back from the definition.
type SessionExercise struct {
	ID                   int                   `json:"id"`
	SessionID            int                   `json:"-"`
	ExerciseDefinitionID *int                  `json:"exerciseDefinitionId"`
	Name                 string                `json:"name"`
	ImplementType        catalog.ImplementType `json:"implementType"`
	ExerciseType         catalog.ExerciseType  `json:"exerciseType"`
	Position             int                   `json:"position"`
	Sets                 []SessionSet          `json:"sets"`
}

func newSessionExercise(sessionID int, def catalog.ExerciseDefinition, position int) SessionExercise {
	defID := def.ID
	return SessionExercise{
		SessionID:            sessionID,
		ExerciseDefinitionID: &defID,
		Name:                 def.Name,
		ImplementType:        def.ImplementType,
		ExerciseType:         def.ExerciseType,
		Position:             position,
		Sets:                 make([]SessionSet, 0),
	}
}

type SessionSet struct {
	ID                int       `json:"id"`
	SessionExerciseID int       `json:"-"`
	Position          int       `json:"position"`
	CreatedAt         time.Time `json:"createdAt"`
	Measurement
}

// HistoryItem is a completed session as listed in the history, without its exercise tree.
type HistoryItem struct {
	ID            int               `json:"id"`
	TemplateID    *int              `json:"templateId"`
	Name          string            `json:"name"`
	Location      *LocationSnapshot `json:"location"`
	Notes         string            `json:"notes"`
	Rating        *int              `json:"rating"`
	StartedAt     time.Time         `json:"startedAt"`
	EndedAt       *time.Time        `json:"endedAt"`
	ExerciseCount int               `json:"exerciseCount"`
	SetCount      int               `json:"setCount"`
}

type HistoryPage struct {
	Items      []HistoryItem `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

func locationSnapshot(id *int, name *string) *LocationSnapshot {
	if name == nil {
		return nil
	}
	return &LocationSnapshot{
		ID:   id,
		Name: *name,
	}
}
