package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
)

// maxPerPage caps the page size a client may request so a single
// listing call cannot pull the whole table.
const maxPerPage = 200

// pageQuery is the pagination request parsed off the query string.
// Out-of-range values clamp instead of erroring so a hand-typed URL
// still renders something sensible.
type pageQuery struct {
	page    int
	perPage int
}

func parsePageQuery(c *echo.Context, defaultPerPage int) pageQuery {
	q := pageQuery{page: 1, perPage: defaultPerPage}
	if raw := strings.TrimSpace(c.QueryParam("page")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.page = n
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("perPage")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.perPage = n
		}
	}
	if q.perPage > maxPerPage {
		q.perPage = maxPerPage
	}
	return q
}

// resolve clamps the requested page against the total count and
// returns the effective page, the page count, and the slice offset.
func (q pageQuery) resolve(totalCount int64) (page, totalPages, offset int) {
	perPage := q.perPage
	if perPage < 1 {
		perPage = 1
	}
	page = q.page
	if page < 1 {
		page = 1
	}
	denom := int64(perPage)
	totalPages = int((totalCount + denom - 1) / denom)
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset = (page - 1) * perPage
	return page, totalPages, offset
}

// showingRange reports the one-based "showing X to Y" bounds for the
// rows actually returned; both bounds are zero for an empty page.
func showingRange(totalCount int64, offset, showingCount int) (int, int) {
	if totalCount <= 0 || showingCount <= 0 {
		return 0, 0
	}
	showingFrom := offset + 1
	showingTo := offset + showingCount
	if int64(showingTo) > totalCount {
		showingTo = int(totalCount)
	}
	return showingFrom, showingTo
}
