package stripe

import (
	"context"
	"errors"
	"iter"
	"reflect"
	"strings"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// ListResponse is one page of a list endpoint.
type ListResponse[T any] struct {
	Object     string  `json:"object"                yaml:"object"`
	Data       []T     `json:"data"                  yaml:"data"`
	HasMore    bool    `json:"has_more"              yaml:"has_more"`
	TotalCount *uint64 `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	URL        string  `json:"url"                   yaml:"url"`
}

// SearchResult is one page of a search endpoint.
type SearchResult[T any] struct {
	Object     string  `json:"object"                yaml:"object"`
	Data       []T     `json:"data"                  yaml:"data"`
	HasMore    bool    `json:"has_more"              yaml:"has_more"`
	TotalCount *uint64 `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	URL        string  `json:"url"                   yaml:"url"`
	NextPage   *string `json:"next_page"             yaml:"next_page"`
}

// PaginationOptions bounds an eager walk.
type PaginationOptions struct {
	// PageSize sets the limit parameter when the params leave it unset.
	PageSize int
	// MaxPages stops the walk after this many pages. Zero means no bound.
	MaxPages int
}

// IsVersionedPath reports whether path is under the versioned API root.
// Absolute URLs are rejected.
func IsVersionedPath(path string) bool {
	return strings.HasPrefix(path, constants.APIRoot)
}

type fetchFunc[T any] func(ctx context.Context) ([]T, bool, error)

// ListIterator lazily walks a paginated endpoint. A page is fetched only
// when the previous one is exhausted. It is owned by a single consumer.
type ListIterator[T any] struct {
	ctx     context.Context //nolint:containedctx
	fetch   fetchFunc[T]
	items   []T
	pos     int
	started bool
	hasMore bool
	done    bool
	err     error
}

func newIterator[T any](ctx context.Context, fetch fetchFunc[T]) *ListIterator[T] {
	return &ListIterator[T]{ctx: ctx, fetch: fetch}
}

// HasNext reports whether Next may return another item. It performs no I/O.
func (it *ListIterator[T]) HasNext() bool {
	if it.done {
		return false
	}

	if it.pos < len(it.items) {
		return true
	}

	return !it.started || it.hasMore
}

// Next returns the next item, fetching a page if needed. After the walk ends
// it returns ErrNoMoreItems. A fetch error is returned once and ends the walk.
func (it *ListIterator[T]) Next() (T, error) {
	var zero T

	if it.done {
		return zero, ErrNoMoreItems
	}

	if it.pos >= len(it.items) {
		if it.started && !it.hasMore {
			it.done = true

			return zero, ErrNoMoreItems
		}

		items, hasMore, err := it.fetch(it.ctx)
		it.started = true

		if err != nil {
			it.done = true
			it.err = err

			return zero, err
		}

		it.items, it.pos, it.hasMore = items, 0, hasMore

		if len(items) == 0 {
			it.done = true

			return zero, ErrNoMoreItems
		}
	}

	item := it.items[it.pos]
	it.pos++

	return item, nil
}

// Err returns the error that ended the walk, if any.
func (it *ListIterator[T]) Err() error {
	return it.err
}

// All drains the iterator.
func (it *ListIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if errors.Is(err, ErrNoMoreItems) {
			break
		}

		if err != nil {
			return nil, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach calls fn for every item until fn or a fetch fails.
func (it *ListIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Seq adapts the iterator to a range-over-func sequence. A fetch error is
// yielded as the last pair. Breaking out of the loop stops all fetching.
func (it *ListIterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if errors.Is(err, ErrNoMoreItems) {
				return
			}

			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			if !yield(item, nil) {
				return
			}
		}
	}
}

type listPager[T Identifiable] struct {
	backend Backend
	path    string
	params  ListParamsContainer
	opts    []RequestOption
}

func (p *listPager[T]) fetch(ctx context.Context) ([]T, bool, error) {
	if !IsVersionedPath(p.path) {
		return nil, false, &UnsupportedVersionError{URL: p.path}
	}

	var page ListResponse[T]

	err := p.backend.GetQuery(ctx, p.path, p.params, &page, p.opts...)
	if err != nil {
		return nil, false, err
	}

	return p.advance(&page)
}

// advance moves the cursor past page. The anchor is the last element, or the
// first one when walking backward.
func (p *listPager[T]) advance(page *ListResponse[T]) ([]T, bool, error) {
	if page.HasMore && len(page.Data) == 0 {
		return nil, false, &PaginationError{URL: firstNonEmpty(page.URL, p.path), Detail: "has_more is true but data is empty"}
	}

	if page.URL != "" {
		p.path = page.URL
	}

	if page.HasMore {
		listParams := p.params.GetListParams()

		anchor := page.Data[len(page.Data)-1]
		if listParams.Cursor.Reverse() {
			anchor = page.Data[0]
		}

		listParams.SetLast(anchor.GetID())
	}

	return page.Data, page.HasMore, nil
}

type searchPager[T any] struct {
	backend Backend
	path    string
	params  SearchParamsContainer
	opts    []RequestOption
}

func (p *searchPager[T]) fetch(ctx context.Context) ([]T, bool, error) {
	if !IsVersionedPath(p.path) {
		return nil, false, &UnsupportedVersionError{URL: p.path}
	}

	var page SearchResult[T]

	err := p.backend.GetQuery(ctx, p.path, p.params, &page, p.opts...)
	if err != nil {
		return nil, false, err
	}

	if page.HasMore && len(page.Data) == 0 {
		return nil, false, &PaginationError{URL: firstNonEmpty(page.URL, p.path), Detail: "has_more is true but data is empty"}
	}

	if page.HasMore {
		if page.NextPage == nil || *page.NextPage == "" {
			return nil, false, &PaginationError{URL: firstNonEmpty(page.URL, p.path), Detail: "has_more is true but next_page is missing"}
		}

		p.params.GetSearchParams().SetPage(*page.NextPage)
	}

	if page.URL != "" {
		p.path = page.URL
	}

	return page.Data, page.HasMore, nil
}

// NewListIterator walks a list endpoint starting at path. The cursor of
// params is advanced in place as pages are consumed.
func NewListIterator[T Identifiable](ctx context.Context, backend Backend, path string, params ListParamsContainer, opts ...RequestOption) *ListIterator[T] {
	pager := &listPager[T]{backend: backend, path: path, params: listParamsOrDefault(params), opts: opts}

	return newIterator(ctx, pager.fetch)
}

// NewSearchIterator walks a search endpoint starting at path.
func NewSearchIterator[T any](ctx context.Context, backend Backend, path string, params SearchParamsContainer, opts ...RequestOption) *ListIterator[T] {
	if isNilContainer(params) {
		params = &SearchParams{}
	}

	pager := &searchPager[T]{backend: backend, path: path, params: params, opts: opts}

	return newIterator(ctx, pager.fetch)
}

// ListFromPage continues a walk from an already fetched page. Its items are
// yielded first; the following pages are fetched from page.URL. A page whose
// URL is outside the versioned API root is rejected before anything is
// yielded or fetched.
func ListFromPage[T Identifiable](ctx context.Context, backend Backend, page *ListResponse[T], params ListParamsContainer, opts ...RequestOption) *ListIterator[T] {
	if page == nil || !IsVersionedPath(page.URL) {
		url := ""
		if page != nil {
			url = page.URL
		}

		return newIterator(ctx, func(context.Context) ([]T, bool, error) {
			return nil, false, &UnsupportedVersionError{URL: url}
		})
	}

	pager := &listPager[T]{backend: backend, path: page.URL, params: listParamsOrDefault(params), opts: opts}
	it := newIterator(ctx, pager.fetch)

	items, hasMore, err := pager.advance(page)
	if err != nil {
		it.fetch = func(context.Context) ([]T, bool, error) { return nil, false, err }

		return it
	}

	it.items, it.hasMore, it.started = items, hasMore, true

	return it
}

// FetchAllPages eagerly walks a list endpoint and concatenates every page.
func FetchAllPages[T Identifiable](ctx context.Context, backend Backend, path string, params ListParamsContainer, options *PaginationOptions, opts ...RequestOption) ([]T, error) {
	params = listParamsOrDefault(params)

	if options != nil && options.PageSize > 0 && params.GetListParams().Limit == nil {
		params.GetListParams().Limit = Int64(int64(options.PageSize))
	}

	pager := &listPager[T]{backend: backend, path: path, params: params, opts: opts}

	var all []T

	for pages := 1; ; pages++ {
		items, hasMore, err := pager.fetch(ctx)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if !hasMore || (options != nil && options.MaxPages > 0 && pages >= options.MaxPages) {
			return all, nil
		}
	}
}

func listParamsOrDefault(params ListParamsContainer) ListParamsContainer {
	if isNilContainer(params) {
		return &ListParams{}
	}

	return params
}

func isNilContainer(v interface{}) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
