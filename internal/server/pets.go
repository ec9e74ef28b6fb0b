package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/models"
)

type PetsHandler struct {
	Store *store.Store
}

func (h *PetsHandler) Register(g *echo.Group, secret []byte) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) })
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *PetsHandler) list(c echo.Context) error {
	userID := c.Get("user_id").(string)
	items, err := h.Store.ListPets(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PetsHandler) create(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req CreatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	id, err := h.Store.CreatePet(c.Request().Context(), userID, req.Name, req.Species, req.Breed, req.BirthDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *PetsHandler) get(c echo.Context) error {
	userID := c.Get("user_id").(string)
	pet, err := h.Store.GetPet(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, models.ErrPetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pet)
}

func (h *PetsHandler) update(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req CreatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	err := h.Store.UpdatePet(c.Request().Context(), c.Param("id"), userID, req.Name, req.Species, req.Breed, req.BirthDate)
	if err != nil {
		if errors.Is(err, models.ErrPetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *PetsHandler) delete(c echo.Context) error {
	userID := c.Get("user_id").(string)
	err := h.Store.DeletePet(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, models.ErrPetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
