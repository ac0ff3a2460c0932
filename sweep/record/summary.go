package record

import "sort"

// Summary aggregates statistics over a set of run records.
type Summary struct {
	Total         int
	OK            int
	Failed        int
	Skipped       int
	TotalMs       int64
	PerCampaign   map[string]int // campaign name -> runs recorded
	FailedFolders []string       // "<folder>/<instance>" of every failed run, sorted
}

// Summarize computes aggregate statistics. Safe for nil or empty input.
func Summarize(records []RunRecord) *Summary {
	summary := &Summary{
		PerCampaign: make(map[string]int),
	}
	for _, r := range records {
		summary.Total++
		summary.PerCampaign[r.Campaign]++
		summary.TotalMs += r.DurationMs
		switch r.Status {
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
			summary.FailedFolders = append(summary.FailedFolders, r.Folder+"/"+r.Instance)
		default:
			summary.OK++
		}
	}
	sort.Strings(summary.FailedFolders)
	return summary
}
