package doctor

import (
	"context"
	"fmt"
	"slices"

	"github.com/hay-kot/parley/internal/core/words"
)

// WordLister returns the user's current dictionary.
type WordLister interface {
	List(ctx context.Context) ([]words.Word, error)
	UserID() string
}

// ProgressCheck finds review progress that points at words no longer in the
// dictionary.
type ProgressCheck struct {
	words    WordLister
	progress words.ProgressStore
	fix      bool
}

// NewProgressCheck creates a stale progress check. If fix is true, stale
// entries are removed from the progress store.
func NewProgressCheck(list WordLister, progress words.ProgressStore, fix bool) *ProgressCheck {
	return &ProgressCheck{words: list, progress: progress, fix: fix}
}

func (c *ProgressCheck) Name() string {
	return "Review Progress"
}

func (c *ProgressCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	userID := c.words.UserID()
	if userID == "" {
		result.add("User", StatusWarn, "no user id; skipped")
		return result
	}

	known, err := c.progress.Known(ctx, userID)
	if err != nil {
		result.add("Read progress", StatusFail, err.Error())
		return result
	}
	if len(known) == 0 {
		result.add("Progress", StatusPass, "no cards marked known yet")
		return result
	}

	list, err := c.words.List(ctx)
	if err != nil {
		result.add("List words", StatusFail, err.Error())
		return result
	}

	current := make(map[words.ID]bool, len(list))
	for _, w := range list {
		current[w.ID] = true
	}

	var stale []words.ID
	for id := range known {
		if !current[id] {
			stale = append(stale, id)
		}
	}
	slices.Sort(stale)

	if len(stale) == 0 {
		result.add("No stale entries", StatusPass, fmt.Sprintf("%d known words tracked", len(known)))
		return result
	}

	for _, id := range stale {
		label := "word " + id.String()

		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   label,
				Status:  StatusWarn,
				Detail:  "marked known but no longer in the dictionary",
				Fixable: true,
			})
			continue
		}

		if err := c.progress.SetKnown(ctx, userID, id, false); err != nil {
			result.add(label, StatusFail, fmt.Sprintf("failed to remove: %v", err))
			continue
		}
		result.add(label, StatusPass, "removed stale progress")
	}

	return result
}
