package query

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/neuronlabs/fancy/config"
)

// Pagination is the limit/offset pagination of the scope.
type Pagination struct {
	Limit  int
	Offset int
}

// String implements fmt.Stringer interface.
func (p *Pagination) String() string {
	return fmt.Sprintf("Limit: %d Offset: %d", p.Limit, p.Offset)
}

// ParsePagination gets the pagination from the query parameters. Returns nil if the limit parameter
// is not set or is not a positive integer. Invalid offsets are treated as zero.
// The limit is cut down to the settings MaxLimit if set.
func ParsePagination(values url.Values, settings *config.Fancy) *Pagination {
	if settings == nil {
		settings = config.DefaultFancy()
	}
	limit, ok := positiveInt(values.Get(settings.LimitParam))
	if !ok || limit == 0 {
		return nil
	}
	if settings.MaxLimit > 0 && limit > settings.MaxLimit {
		limit = settings.MaxLimit
	}
	offset, _ := positiveInt(values.Get(settings.OffsetParam))
	return &Pagination{Limit: limit, Offset: offset}
}

func positiveInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
