package booking

import (
	"strings"

	"github.com/tigertix/tigertix/internal/domain"
)

// ResolveByName picks the event a free-text name refers to. A
// case-insensitive exact match wins; otherwise the first event, in the given
// order, whose name contains the query. Two events that both contain the
// query are not disambiguated: the earlier one is chosen.
func ResolveByName(events []domain.Event, name string) (domain.Event, bool) {
	query := strings.TrimSpace(name)
	if query == "" {
		return domain.Event{}, false
	}

	for _, e := range events {
		if strings.EqualFold(e.Name, query) {
			return e, true
		}
	}

	lowered := strings.ToLower(query)
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Name), lowered) {
			return e, true
		}
	}

	return domain.Event{}, false
}
