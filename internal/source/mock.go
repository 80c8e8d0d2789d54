package source

import (
	"fmt"
	"time"

	"calkids/internal/dates"
	"calkids/internal/model"
)

// mockSlot describes one generated task in a child's daily routine. Slots
// with a per-child hour offset get staggered start times so siblings do not
// overlap on shared activities.
type mockSlot struct {
	key       string
	title     string
	startHour int
	startMin  int
	endHour   int
	endMin    int
	staggered bool
}

var mockSlots = []mockSlot{
	{key: "breakfast", title: "🍎 Colazione", startHour: 8, startMin: 0, endHour: 8, endMin: 30},
	{key: "homework", title: "📚 Compiti", startHour: 14, endHour: 15, staggered: true},
	{key: "play", title: "🎮 Gioco libero", startHour: 16, endHour: 17, staggered: true},
	{key: "dinner", title: "🍽️ Cena", startHour: 19, startMin: 0, endHour: 19, endMin: 30},
	{key: "bedtime", title: "🛏️ Andare a letto", startHour: 20, startMin: 0, endHour: 20, endMin: 30, staggered: true},
}

// GenerateMockDay builds a deterministic daily schedule for the given
// profiles. Instance ids embed the child id, slot key and day, so repeated
// generation of the same day yields identical instances.
func GenerateMockDay(profiles []model.ChildProfile, day string) ([]model.TaskInstance, error) {
	if _, err := dates.ParseDayKey(day); err != nil {
		return nil, fmt.Errorf("generate mock day: %w", err)
	}

	var out []model.TaskInstance
	for idx, child := range profiles {
		for _, slot := range mockSlots {
			offset := 0
			if slot.staggered {
				offset = idx
				// Large families would stagger past midnight; pin the
				// late slots to the end of the day instead.
				if slot.endHour+offset > 23 {
					offset = 23 - slot.endHour
				}
			}
			start, err := dates.CombineDayTime(day, fmt.Sprintf("%02d:%02d", slot.startHour+offset, slot.startMin))
			if err != nil {
				return nil, fmt.Errorf("generate mock day: %w", err)
			}
			end, err := dates.CombineDayTime(day, fmt.Sprintf("%02d:%02d", slot.endHour+offset, slot.endMin))
			if err != nil {
				return nil, fmt.Errorf("generate mock day: %w", err)
			}
			out = append(out, model.TaskInstance{
				ID:      fmt.Sprintf("%s_%s_%s", child.ID, slot.key, day),
				ChildID: child.ID,
				Title:   slot.title,
				Color:   child.Color,
				Date:    day,
				Start:   start,
				End:     end,
			})
		}
	}
	return out, nil
}

// GenerateMockRange produces schedules for every day between from and to
// inclusive.
func GenerateMockRange(profiles []model.ChildProfile, from, to time.Time) ([]model.TaskInstance, error) {
	var out []model.TaskInstance
	for cur := from; !cur.After(to); cur = dates.AddDays(cur, 1) {
		day, err := GenerateMockDay(profiles, dates.DayKey(cur))
		if err != nil {
			return nil, err
		}
		out = append(out, day...)
	}
	return out, nil
}
