// Package controller binds the HTTP surface to the service layer: query
// and body parsing, service dispatch, and error-to-status mapping.
package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/httputil"
	"github.com/sydscene/sydscene/pkg/schemas"
	"github.com/sydscene/sydscene/pkg/services"
	"gorm.io/gorm"
)

type Controller struct {
	events    *services.EventService
	dashboard *services.DashboardService
	captures  *services.EmailCaptureService
}

func NewController(db *gorm.DB) *Controller {
	return &Controller{
		events:    services.NewEventService(db),
		dashboard: services.NewDashboardService(db),
		captures:  services.NewEmailCaptureService(db),
	}
}

func parseEventQuery(r *http.Request) *schemas.EventQuery {
	values := r.URL.Query()

	q := &schemas.EventQuery{
		Search: values.Get("search"),
		Status: values.Get("status"),
		City:   values.Get("city"),
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("perPage")); err == nil {
		q.PerPage = perPage
	}
	if from, err := time.Parse(time.RFC3339, values.Get("from")); err == nil {
		q.From = &from
	}
	if to, err := time.Parse(time.RFC3339, values.Get("to")); err == nil {
		q.To = &to
	}
	return q
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		httputil.NewError(w, r, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidCapture):
		httputil.NewError(w, r, http.StatusBadRequest, err)
	default:
		httputil.NewError(w, r, http.StatusInternalServerError, err)
	}
}
