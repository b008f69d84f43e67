package roster

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viatra/viatra/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/roster", h.ListRoster)
	api.POST("/roster", h.AddEntry)
}

func (h *Handler) AddEntry(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.svc.Add(c.Request().Context(), e)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, stored)
}

func (h *Handler) ListRoster(c echo.Context) error {
	pg := pagination.FromContext(c)
	// The collated view is the default; ?sorted=false returns insertion order.
	sorted := c.QueryParam("sorted") != "false"
	entries, err := h.svc.List(c.Request().Context(), sorted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	start, end := pg.Window(len(entries))
	return c.JSON(http.StatusOK, pagination.NewResponse(entries[start:end], len(entries), pg.Limit, pg.Offset))
}
