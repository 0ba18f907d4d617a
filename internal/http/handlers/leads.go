package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/leadline/leadline/internal/auth"
	"github.com/leadline/leadline/internal/http/authn"
	"github.com/leadline/leadline/internal/store"
)

const leadsPerPage = 50

// HandleLeads lists leads scoped to the request's effective tenant.
// Platform admins see across tenants; everyone else is filtered to the
// tenant the resolver derived for this request.
func (h *Handlers) HandleLeads(c *echo.Context) error {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return authn.Deny(c, http.StatusUnauthorized, auth.ErrUnauthenticated)
	}

	leads, err := h.Store.ListLeads(c.Request().Context(), tenantFilter(p))
	if err != nil {
		return h.RenderError(c, err)
	}

	q := parsePageQuery(c, leadsPerPage)
	page, totalPages, offset := q.resolve(int64(len(leads)))
	pageLeads := pageSlice(leads, offset, q.perPage)
	showingFrom, showingTo := showingRange(int64(len(leads)), offset, len(pageLeads))

	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"leads":       pageLeads,
		"total":       len(leads),
		"page":        page,
		"totalPages":  totalPages,
		"showingFrom": showingFrom,
		"showingTo":   showingTo,
	})
}

func pageSlice(leads []store.Lead, offset, perPage int) []store.Lead {
	if offset >= len(leads) {
		return []store.Lead{}
	}
	end := offset + perPage
	if end > len(leads) {
		end = len(leads)
	}
	return leads[offset:end]
}
