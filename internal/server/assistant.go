package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/whiskertrack/whiskertrack/internal/store"
	"github.com/whiskertrack/whiskertrack/models"
	"github.com/whiskertrack/whiskertrack/provider"
)

// AssistantHandler answers free-form owner questions about one pet through
// the LLM provider.
type AssistantHandler struct {
	Store *store.Store
	LLM   provider.Provider
}

func (h *AssistantHandler) Register(g *echo.Group, secret []byte) {
	auth := func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) }
	g.POST("/:id/assistant", h.ask, auth)
}

func (h *AssistantHandler) ownedPet(c echo.Context) (models.Pet, error) {
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

func (h *AssistantHandler) ask(c echo.Context) error {
	pet, err := h.ownedPet(c)
	if err != nil {
		return err
	}
	var req AssistantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	reply, err := h.LLM.GeneralMessage(c.Request().Context(), req.Message, pet)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, AssistantResponse{Reply: reply})
}
