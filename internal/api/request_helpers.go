package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// handleUserID extracts the authenticated user's ID and writes a 401 when
// the authentication middleware did not run or found no user.
func handleUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// parsePagination reads the page and page_size query parameters. Missing
// values are zero and get defaults from the service; non-numeric values are
// rejected.
func parsePagination(r *http.Request) (page, pageSize int, err error) {
	q := r.URL.Query()
	if page, err = queryInt(q.Get("page"), "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt(q.Get("page_size"), "page_size"); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// mapPage converts a service page into its response shape.
func mapPage[T, R any](p *service.Page[T], convert func(T) R) PageResponse[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, convert(item))
	}
	return PageResponse[R]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}
