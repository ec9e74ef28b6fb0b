package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/whiskertrack/whiskertrack/internal/narrative"
	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/models"
	"github.com/whiskertrack/whiskertrack/provider"
)

type ArchivesHandler struct {
	Store    *store.Store
	LLM      provider.Provider
	Pipeline *Pipeline
}

// Register mounts pet-scoped routes (list/create/generate) and archive-scoped
// routes (get/update/delete/detail).
func (h *ArchivesHandler) Register(pets *echo.Group, archives *echo.Group, secret []byte) {
	auth := func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) }
	pets.GET("/:id/archives", h.list, auth)
	pets.POST("/:id/archives", h.create, auth)
	pets.POST("/:id/archives/generate", h.generate, auth)
	archives.Use(auth)
	archives.GET("/:id", h.get)
	archives.PUT("/:id", h.update)
	archives.DELETE("/:id", h.delete)
	archives.GET("/:id/detail", h.detail)
}

func (h *ArchivesHandler) ownedPet(c echo.Context) (models.Pet, error) {
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

func (h *ArchivesHandler) ownedArchive(c echo.Context) (models.DiseaseArchive, error) {
	userID := c.Get("user_id").(string)
	ctx := c.Request().Context()
	id := c.Param("id")
	owner, err := h.Store.ArchiveOwner(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrArchiveNotFound) {
			return models.DiseaseArchive{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return models.DiseaseArchive{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if owner != userID {
		return models.DiseaseArchive{}, echo.NewHTTPError(http.StatusNotFound, models.ErrArchiveNotFound.Error())
	}
	a, err := h.Store.GetArchive(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrArchiveNotFound) {
			return models.DiseaseArchive{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return models.DiseaseArchive{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return a, nil
}

func (h *ArchivesHandler) list(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	items, err := h.Store.ListArchivesByPet(c.Request().Context(), pet.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ArchivesHandler) create(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	var req CreateArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title required")
	}
	id, err := h.Store.CreateArchive(c.Request().Context(), pet.ID, req.Title, req.Content, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// generate asks the LLM for a narrative over the pet's events and stores it
// as a generated archive.
func (h *ArchivesHandler) generate(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	var req GenerateArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var events []models.AbnormalEvent
	if req.From != nil && req.To != nil {
		events, err = h.Store.ListEventsBetween(ctx, pet.ID, *req.From, *req.To)
	} else {
		events, err = h.Store.ListEventsByPet(ctx, pet.ID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no abnormal events to summarise")
	}

	content, err := h.LLM.GenerateArchive(ctx, pet, events)
	if err != nil {
		archiveGenerations.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	archiveGenerations.WithLabelValues("ok").Inc()

	title := req.Title
	if title == "" {
		title = pet.Name + " " + time.Now().UTC().Format("2006-01-02")
	}
	id, err := h.Store.CreateArchive(ctx, pet.ID, title, content, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *ArchivesHandler) get(c echo.Context) error {
	a, err := h.ownedArchive(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArchivesHandler) update(c echo.Context) error {
	a, err := h.ownedArchive(c)
	if err != nil {
		return err
	}
	var req UpdateArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	title := req.Title
	if title == "" {
		title = a.Title
	}
	if err := h.Store.UpdateArchiveContent(c.Request().Context(), a.ID, title, req.Content); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *ArchivesHandler) delete(c echo.Context) error {
	a, err := h.ownedArchive(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteArchive(c.Request().Context(), a.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// detail returns the archive with its narrative run through the full
// pipeline: language detection, dated sections, matched events. The optional
// lang query carries the UI language used when detection stays under the
// score floor.
func (h *ArchivesHandler) detail(c echo.Context) error {
	a, err := h.ownedArchive(c)
	if err != nil {
		return err
	}
	events, err := h.Store.ListEventsByPet(c.Request().Context(), a.PetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	fallback := narrative.Language(c.QueryParam("lang"))
	n := h.Pipeline.Run(a.Content, events, fallback)
	return c.JSON(http.StatusOK, ArchiveDetailResponse{Archive: a, Narrative: n})
}
