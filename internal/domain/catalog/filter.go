package catalog

import "strings"

// Match reports whether c passes the filter. Search is case-insensitive over
// title and description.
func (f CompetitionFilter) Match(c Competition) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	return containsFold(f.Search, c.Title, c.Description)
}

// Match reports whether c passes the filter. Search is case-insensitive over
// name and category.
func (f ContestantFilter) Match(c Contestant) bool {
	if f.CompetitionID != "" && c.CompetitionID != f.CompetitionID {
		return false
	}
	if f.ActiveOnly && !c.IsActive {
		return false
	}
	return containsFold(f.Search, c.Name, c.Category)
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
