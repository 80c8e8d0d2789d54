// Package rewards tracks completion points and star progress for child
// profiles.
package rewards

import (
	"fmt"
	"time"

	"calkids/internal/model"
)

// PointsPerTask is awarded for each completed task and taken back when the
// completion is undone.
const PointsPerTask = 10

// pointsPerStar converts accumulated points into stars.
const pointsPerStar = 50

// StarsForPoints returns how many full stars the given point total earns.
func StarsForPoints(points int) int {
	if points < 0 {
		return 0
	}
	return points / pointsPerStar
}

// PointsToNextStar returns how many more points are needed to reach the
// next star.
func PointsToNextStar(points int) int {
	if points < 0 {
		points = 0
	}
	return (points/pointsPerStar+1)*pointsPerStar - points
}

// InstanceStore persists per-instance completion state.
type InstanceStore interface {
	Get(instanceID string) (*model.InstanceState, error)
	Set(state model.InstanceState) error
}

// RewardStore persists per-child point totals.
type RewardStore interface {
	Get(childID string) (*model.RewardPoints, error)
	Upsert(points model.RewardPoints) error
}

// Tracker applies completion toggles to instance state and point totals.
// Marking is idempotent: repeating an already-applied toggle changes
// nothing and awards nothing.
type Tracker struct {
	instances InstanceStore
	points    RewardStore
}

func NewTracker(instances InstanceStore, points RewardStore) *Tracker {
	return &Tracker{instances: instances, points: points}
}

// Result reports the outcome of a completion toggle.
type Result struct {
	Changed bool               `json:"changed"`
	Done    bool               `json:"done"`
	Points  model.RewardPoints `json:"points"`
}

// SetDone marks a task instance done or not done for a child and adjusts
// point totals accordingly. The instance state is written before the points,
// so a repeated request observes the recorded state and becomes a no-op
// instead of double counting. With no child to credit the toggle is still
// recorded but no points move; the points table is keyed by child id, so an
// empty id would pool completions from every household into one row.
func (t *Tracker) SetDone(householdID, instanceID, childID, childName string, done bool) (Result, error) {
	prev, err := t.instances.Get(instanceID)
	if err != nil {
		return Result{}, fmt.Errorf("load instance state: %w", err)
	}

	var current model.RewardPoints
	if childID != "" {
		current, err = t.currentPoints(householdID, childID, childName)
		if err != nil {
			return Result{}, err
		}
	}

	wasDone := prev != nil && prev.Done
	if wasDone == done {
		return Result{Changed: false, Done: done, Points: current}, nil
	}

	now := time.Now()
	state := model.InstanceState{
		InstanceID: instanceID,
		ChildID:    childID,
		Done:       done,
		UpdatedAt:  now,
	}
	if done {
		state.DoneAt = &now
	}
	if err := t.instances.Set(state); err != nil {
		return Result{}, fmt.Errorf("save instance state: %w", err)
	}

	if childID == "" {
		return Result{Changed: true, Done: done}, nil
	}

	if done {
		current.TotalPoints += PointsPerTask
		current.DailyPoints += PointsPerTask
		current.TasksCompleted++
	} else {
		if current.TotalPoints >= PointsPerTask {
			current.TotalPoints -= PointsPerTask
		}
		if current.DailyPoints >= PointsPerTask {
			current.DailyPoints -= PointsPerTask
		}
		if current.TasksCompleted > 0 {
			current.TasksCompleted--
		}
	}
	current.UpdatedAt = now

	if err := t.points.Upsert(current); err != nil {
		return Result{}, fmt.Errorf("save reward points: %w", err)
	}

	return Result{Changed: true, Done: done, Points: current}, nil
}

func (t *Tracker) currentPoints(householdID, childID, childName string) (model.RewardPoints, error) {
	existing, err := t.points.Get(childID)
	if err != nil {
		return model.RewardPoints{}, fmt.Errorf("load reward points: %w", err)
	}
	if existing != nil {
		if childName != "" {
			existing.ChildName = childName
		}
		return *existing, nil
	}
	return model.RewardPoints{
		ChildID:     childID,
		HouseholdID: householdID,
		ChildName:   childName,
	}, nil
}
