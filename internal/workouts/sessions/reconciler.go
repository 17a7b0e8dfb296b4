package sessions

import (
	"context"
	"fmt"

	"github.com/2beens/gymsessions/internal/workouts/catalog"
)

type ExercisePosition struct {
	ID       int
	Position int
}

type NewExercise struct {
	ExerciseDefinitionID int
	Position             int
}

// ReconcilePlan turns the current exercise list of a session into the desired one.
// Positions in Keep and Add together form 1..N in desired order.
type ReconcilePlan struct {
	Keep   []ExercisePosition
	Add    []NewExercise
	Remove []int
}

func (p ReconcilePlan) IsNoop(current []SessionExercise) bool {
	if len(p.Add) > 0 || len(p.Remove) > 0 {
		return false
	}
	positions := make(map[int]int, len(current))
	for _, e := range current {
		positions[e.ID] = e.Position
	}
	for _, k := range p.Keep {
		if positions[k.ID] != k.Position {
			return false
		}
	}
	return true
}

// PlanReconcile matches desired definition ids against the current exercises (given in position order).
// Each desired occurrence takes the first unused current exercise with the same definition,
// so duplicates are matched one to one and the rows that are kept keep their sets.
// Exercises whose definition no longer exists are never matched and get removed.
func PlanReconcile(current []SessionExercise, desired []int) ReconcilePlan {
	available := make(map[int][]int)
	for _, e := range current {
		if e.ExerciseDefinitionID == nil {
			continue
		}
		defID := *e.ExerciseDefinitionID
		available[defID] = append(available[defID], e.ID)
	}

	plan := ReconcilePlan{
		Keep:   make([]ExercisePosition, 0, len(desired)),
		Add:    make([]NewExercise, 0),
		Remove: make([]int, 0),
	}
	kept := make(map[int]bool, len(current))
	for i, defID := range desired {
		position := i + 1
		if ids := available[defID]; len(ids) > 0 {
			plan.Keep = append(plan.Keep, ExercisePosition{ID: ids[0], Position: position})
			available[defID] = ids[1:]
			kept[ids[0]] = true
			continue
		}
		plan.Add = append(plan.Add, NewExercise{ExerciseDefinitionID: defID, Position: position})
	}

	for _, e := range current {
		if !kept[e.ID] {
			plan.Remove = append(plan.Remove, e.ID)
		}
	}

	return plan
}

// applyReconcile writes the plan. Removals go first, then positions of kept exercises,
// then the new snapshots. Position uniqueness is checked at commit, so the order of
// these statements cannot clash on intermediate positions.
func applyReconcile(
	ctx context.Context,
	repo *Repo,
	sessionID int,
	plan ReconcilePlan,
	definitions map[int]catalog.ExerciseDefinition,
) error {
	if err := repo.DeleteExercises(ctx, sessionID, plan.Remove); err != nil {
		return err
	}

	ids := make([]int, len(plan.Keep))
	positions := make([]int, len(plan.Keep))
	for i, k := range plan.Keep {
		ids[i] = k.ID
		positions[i] = k.Position
	}
	if err := repo.UpdateExercisePositions(ctx, sessionID, ids, positions); err != nil {
		return err
	}

	added := make([]SessionExercise, 0, len(plan.Add))
	for _, a := range plan.Add {
		def, ok := definitions[a.ExerciseDefinitionID]
		if !ok {
			return fmt.Errorf("exercise definition %d: %w", a.ExerciseDefinitionID, ErrNotFound)
		}
		added = append(added, newSessionExercise(sessionID, def, a.Position))
	}
	return repo.InsertExercises(ctx, sessionID, added)
}
