package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/models"
)

// DraftsHandler autosaves in-progress archive edits to redis with a TTL, so
// an abandoned editing session expires on its own. One draft per pet.
type DraftsHandler struct {
	Store *store.Store
	Rdb   *redis.Client
	TTL   time.Duration
}

func (h *DraftsHandler) Register(g *echo.Group, secret []byte) {
	auth := func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) }
	g.PUT("/:id/draft", h.save, auth)
	g.GET("/:id/draft", h.get, auth)
	g.DELETE("/:id/draft", h.discard, auth)
}

func draftKey(petID string) string { return "draft:archive:" + petID }

func (h *DraftsHandler) ownedPet(c echo.Context) (models.Pet, error) {
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

func (h *DraftsHandler) save(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	var req SaveDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	draft := models.ArchiveDraft{PetID: pet.ID, Title: req.Title, Content: req.Content, SavedAt: time.Now().UTC()}
	payload, err := json.Marshal(draft)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.Rdb.Set(c.Request().Context(), draftKey(pet.ID), payload, h.TTL).Err(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *DraftsHandler) get(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	raw, err := h.Rdb.Get(c.Request().Context(), draftKey(pet.ID)).Bytes()
	if err == redis.Nil {
		return echo.NewHTTPError(http.StatusNotFound, "no draft")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var draft models.ArchiveDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *DraftsHandler) discard(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	if err := h.Rdb.Del(c.Request().Context(), draftKey(pet.ID)).Err(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
