// Package doctor runs environment checks for `parley doctor`.
package doctor

import (
	"context"
	"time"
)

// Status is the outcome of one check item. It encodes to JSON as-is.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

func (r *Result) add(label string, status Status, detail string) {
	r.Items = append(r.Items, CheckItem{Label: label, Status: status, Detail: detail})
}

type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// DefaultCheckTimeout bounds a single check so one unreachable host cannot
// stall the whole report.
const DefaultCheckTimeout = 10 * time.Second

// RunAll runs checks in order, each under its own deadline. A zero timeout
// means DefaultCheckTimeout. Nil checks are skipped.
func RunAll(ctx context.Context, timeout time.Duration, checks ...Check) []Result {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if check == nil {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		result := check.Run(checkCtx)
		cancel()

		if result.Name == "" {
			result.Name = check.Name()
		}
		results = append(results, result)
	}
	return results
}

// Counts tallies items across results.
type Counts struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Healthy reports whether nothing failed.
func (c Counts) Healthy() bool { return c.Failed == 0 }

// Tally counts items by status. Fixable counts the open issues `--fix`
// would repair.
func Tally(results []Result) Counts {
	var c Counts
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				c.Passed++
				continue
			case StatusWarn:
				c.Warned++
			case StatusFail:
				c.Failed++
			}
			if item.Fixable {
				c.Fixable++
			}
		}
	}
	return c
}
