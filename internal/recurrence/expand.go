package recurrence

import (
	"log/slog"
	"time"

	"calkids/internal/dates"
	"calkids/internal/model"
)

// HorizonDays caps how far past its start a template is ever expanded,
// bounding output size regardless of the requested range.
const HorizonDays = 90

// Expand generates the concrete instances of tmpl within [rangeStart,
// rangeEnd] (inclusive on both ends).
//
// One-off templates emit themselves unchanged as a single instance,
// included by a simple start-in-range check that is not day-boundary
// aware. Daily and weekly templates step a cursor from tmpl.Start by 1 or
// 7 calendar days, stopping the first time it exceeds rangeEnd or the
// 90-day horizon. Each instance keeps the template's duration and gets the
// composite id "templateID@YYYY-MM-DD".
//
// Output is not sorted; the calendar assembler orders instances per day.
// A template whose end precedes its start yields negative-duration
// instances unchanged.
func Expand(tmpl model.TaskTemplate, rangeStart, rangeEnd time.Time) []model.TaskInstance {
	rep, err := ParseRepeat(tmpl.Repeat)
	if err != nil {
		slog.Error("invalid repeat mode", "template_id", tmpl.ID, "repeat", tmpl.Repeat, "error", err)
		rep = None
	}

	if rep == None {
		if tmpl.Start.Before(rangeStart) || tmpl.Start.After(rangeEnd) {
			return nil
		}
		return []model.TaskInstance{occurrence(tmpl, tmpl.Start, tmpl.End)}
	}

	duration := tmpl.End.Sub(tmpl.Start)
	step := rep.StepDays()

	limit := rangeEnd
	if horizon := dates.AddDays(tmpl.Start, HorizonDays); horizon.Before(limit) {
		limit = horizon
	}

	var out []model.TaskInstance
	for cur := tmpl.Start; !cur.After(limit); cur = dates.AddDays(cur, step) {
		if cur.Before(rangeStart) {
			continue
		}
		out = append(out, occurrence(tmpl, cur, cur.Add(duration)))
	}
	return out
}

func occurrence(tmpl model.TaskTemplate, start, end time.Time) model.TaskInstance {
	day := dates.DayKey(start)
	return model.TaskInstance{
		ID:         tmpl.ID + "@" + day,
		TemplateID: tmpl.ID,
		ChildID:    tmpl.ChildID,
		Title:      tmpl.Title,
		Color:      tmpl.Color,
		Icon:       tmpl.Icon,
		Date:       day,
		Start:      start,
		End:        end,
	}
}
