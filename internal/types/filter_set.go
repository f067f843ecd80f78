package types

// FilterSet is the smart filter suggestion payload for one entity type within
// a company: the filter values the UI should surface up front
// Example: {"statuses":["Open","In Progress"],"priorities":["High"],"trades":["Electrical"],"dateRanges":["this_week"]}
type FilterSet struct {
	// Suggested status filters
	Statuses []string `json:"statuses"`

	// Suggested priority filters
	Priorities []string `json:"priorities"`

	// Suggested trade filters, e.g. "Electrical", "Plumbing"
	Trades []string `json:"trades"`

	// Suggested assignee filters
	Assignees []string `json:"assignees,omitempty"`

	// Suggested relative date range filters, e.g. "this_week"
	DateRanges []string `json:"dateRanges"`
}
