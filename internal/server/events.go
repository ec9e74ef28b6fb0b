package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/models"
)

type EventsHandler struct {
	Store *store.Store
}

func (h *EventsHandler) Register(g *echo.Group, secret []byte) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) })
	g.GET("/:id/events", h.list)
	g.POST("/:id/events", h.create)
	g.GET("/:id/events/calendar", h.calendar)
	g.DELETE("/:id/events/:eventID", h.delete)
}

// ownedPet loads the pet and enforces ownership; every event route hangs off
// a pet the caller owns.
func (h *EventsHandler) ownedPet(c echo.Context) (models.Pet, error) {
	userID := c.Get("user_id").(string)
	pet, err := h.Store.GetPet(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, models.ErrPetNotFound) {
			return models.Pet{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return models.Pet{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return pet, nil
}

func (h *EventsHandler) list(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	items, err := h.Store.ListEventsByPet(c.Request().Context(), pet.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *EventsHandler) create(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RecordDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "record_date required (ISO-8601)")
	}
	id, err := h.Store.CreateEvent(c.Request().Context(), pet.ID, req.RecordDate.Time, req.Symptoms, req.Note)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// calendar returns the days of a month that carry at least one abnormal
// event, computed on UTC calendar fields.
func (h *EventsHandler) calendar(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "year required")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be 1-12")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	events, err := h.Store.ListEventsBetween(c.Request().Context(), pet.ID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	seen := map[int]bool{}
	days := []int{}
	for _, ev := range events {
		d := ev.RecordedAt.UTC().Day()
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return c.JSON(http.StatusOK, CalendarResponse{Year: year, Month: month, Days: days})
}

func (h *EventsHandler) delete(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	err = h.Store.DeleteEvent(c.Request().Context(), c.Param("eventID"), pet.ID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
