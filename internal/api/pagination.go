package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	defaultPageSize = 6
	maxPageSize     = 50
)

var errInvalidPage = &service.Error{Kind: service.KindNotFound, Code: service.CodeNotFound, Message: "invalid page"}

// pageSize reads the limit query value, falling back to the default for
// missing or malformed values and capping it at the maximum.
func pageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// paginate slices items according to the page and limit query values.
func paginate[T any](c *gin.Context, items []T) (types.Page[T], error) {
	size := pageSize(c.Query("limit"))

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return types.Page[T]{}, errInvalidPage
		}
		page = n
	}

	count := len(items)
	last := (count + size - 1) / size
	if last == 0 {
		last = 1
	}
	if page > last {
		return types.Page[T]{}, errInvalidPage
	}

	start := (page - 1) * size
	end := min(start+size, count)
	results := make([]T, end-start)
	copy(results, items[start:end])

	p := types.Page[T]{Count: count, Results: results}
	if page < last {
		next := pageURL(c, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		p.Previous = &prev
	}
	return p, nil
}

// mapPage converts the results of a page.
func mapPage[T, R any](p types.Page[T], convert func(T) R) types.Page[R] {
	out := types.Page[R]{Count: p.Count, Next: p.Next, Previous: p.Previous, Results: make([]R, len(p.Results))}
	for i, item := range p.Results {
		out.Results[i] = convert(item)
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return baseURL(c) + u.RequestURI()
}
