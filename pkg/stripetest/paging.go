package stripetest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
	"github.com/fivetwenty-io/stripe-client/internal/form"
	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

var (
	errUnknownCursor = errors.New("cursor does not match any object")
	errInvalidPage   = errors.New("invalid page token")
	errInvalidQuery  = errors.New("invalid search query")
)

func decodeBody(r *http.Request, dst interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return fmt.Errorf("parsing form body: %w", err)
	}

	return form.Decode(r.PostForm, dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// mergeMetadata applies an update: an empty value removes the key.
func mergeMetadata(dst *map[string]string, update map[string]string) {
	if len(update) == 0 {
		return
	}

	if *dst == nil {
		*dst = make(map[string]string, len(update))
	}

	for key, value := range update {
		if value == "" {
			delete(*dst, key)

			continue
		}

		(*dst)[key] = value
	}
}

func inRange(r *stripe.RangeQueryParams, v int64) bool {
	if r == nil {
		return true
	}

	switch {
	case r.Exact != nil && v != *r.Exact:
		return false
	case r.GreaterThan != nil && v <= *r.GreaterThan:
		return false
	case r.GreaterThanOrEqual != nil && v < *r.GreaterThanOrEqual:
		return false
	case r.LesserThan != nil && v >= *r.LesserThan:
		return false
	case r.LesserThanOrEqual != nil && v > *r.LesserThanOrEqual:
		return false
	}

	return true
}

func pageLimit(limit *int64) int {
	if limit == nil || *limit <= 0 {
		return constants.DefaultPageSize
	}

	if *limit > constants.MaxPageSize {
		return constants.MaxPageSize
	}

	return int(*limit)
}

// paginate cuts one page out of items, which are in list order. A
// starting_after cursor yields the items following the anchor; an
// ending_before cursor yields the items immediately preceding it.
func paginate[T stripe.Identifiable](items []T, params *stripe.ListParams, path string) (*stripe.ListResponse[T], error) {
	limit := pageLimit(params.Limit)
	start, end := 0, len(items)

	if !params.Cursor.IsZero() {
		anchor := -1

		for i, item := range items {
			if item.GetID() == params.Cursor.ID() {
				anchor = i

				break
			}
		}

		if anchor < 0 {
			return nil, errUnknownCursor
		}

		if params.Cursor.Reverse() {
			end = anchor
			start = max(0, end-limit)
		} else {
			start = anchor + 1
		}
	}

	hasMore := false

	if params.Cursor.Reverse() {
		hasMore = start > 0
	} else if end-start > limit {
		end = start + limit
		hasMore = true
	}

	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)

	return &stripe.ListResponse[T]{
		Object:  string(stripe.ObjectTypeList),
		Data:    data,
		HasMore: hasMore,
		URL:     path,
	}, nil
}

// searchPage serves one page of a search. The page token is the offset of
// the first item.
func searchPage[T any](items []T, params *stripe.SearchParams, path string) (*stripe.SearchResult[T], error) {
	limit := pageLimit(params.Limit)
	offset := 0

	if params.Page != nil && *params.Page != "" {
		parsed, err := strconv.Atoi(*params.Page)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidPage, *params.Page)
		}

		offset = min(parsed, len(items))
	}

	end := min(offset+limit, len(items))
	total := uint64(len(items))

	result := &stripe.SearchResult[T]{
		Object:     string(stripe.ObjectTypeSearch),
		Data:       append(make([]T, 0, end-offset), items[offset:end]...),
		HasMore:    end < len(items),
		TotalCount: &total,
		URL:        path,
	}

	if result.HasMore {
		next := strconv.Itoa(end)
		result.NextPage = &next
	}

	return result, nil
}

type searchClause struct {
	field    string
	metadata bool
	contains bool
	value    string
}

type searchClauses []searchClause

// parseSearchQuery understands clauses of the form field:'value',
// field~'value' and metadata['key']:'value' joined by AND.
func parseSearchQuery(query string) (searchClauses, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", errInvalidQuery)
	}

	parts := strings.Split(query, " AND ")
	clauses := make(searchClauses, 0, len(parts))

	for _, part := range parts {
		clause, err := parseSearchClause(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
	}

	return clauses, nil
}

func parseSearchClause(part string) (searchClause, error) {
	index := strings.IndexAny(part, ":~")
	if index <= 0 {
		return searchClause{}, fmt.Errorf("%w: %q", errInvalidQuery, part)
	}

	clause := searchClause{
		field:    part[:index],
		contains: part[index] == '~',
		value:    strings.Trim(part[index+1:], `'"`),
	}

	if strings.HasPrefix(clause.field, "metadata[") && strings.HasSuffix(clause.field, "]") {
		clause.metadata = true
		clause.field = strings.Trim(clause.field[len("metadata["):len(clause.field)-1], `'"`)
	}

	return clause, nil
}

func (c searchClauses) match(fields map[string]string, metadata map[string]string) bool {
	for _, clause := range c {
		var (
			actual string
			ok     bool
		)

		if clause.metadata {
			actual, ok = metadata[clause.field]
		} else {
			actual, ok = fields[clause.field]
		}

		if !ok {
			return false
		}

		if clause.contains {
			if !strings.Contains(actual, clause.value) {
				return false
			}

			continue
		}

		if actual != clause.value {
			return false
		}
	}

	return true
}
