package recurrence

import "fmt"

type Repeat int

const (
	None Repeat = iota
	Daily
	Weekly
)

var repeatNames = map[Repeat]string{
	None:   "none",
	Daily:  "daily",
	Weekly: "weekly",
}

var repeatFromName = map[string]Repeat{
	"":       None,
	"none":   None,
	"daily":  Daily,
	"weekly": Weekly,
}

// ParseRepeat parses a repeat mode string. The empty string means none.
func ParseRepeat(s string) (Repeat, error) {
	r, ok := repeatFromName[s]
	if !ok {
		return None, fmt.Errorf("unknown repeat mode: %q", s)
	}
	return r, nil
}

func (r Repeat) String() string {
	return repeatNames[r]
}

// StepDays is the cursor advance between occurrences: 0 for one-off
// templates, 1 for daily, 7 for weekly.
func (r Repeat) StepDays() int {
	switch r {
	case Daily:
		return 1
	case Weekly:
		return 7
	}
	return 0
}

// Describe returns a human-readable description of the repeat mode.
func (r Repeat) Describe() string {
	switch r {
	case Daily:
		return "Repeats daily"
	case Weekly:
		return "Repeats weekly"
	}
	return "One-off"
}
