package pilot

import (
	"errors"
	"net/http"
	"strconv"

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
	api.GET("/pilot-requests", h.ListRequests)
	api.POST("/pilot-requests", h.AppendRequest)
	api.GET("/pilot-requests/recent", h.RecentRequests)

	api.GET("/pitch", h.GetPitch)
}

func (h *Handler) AppendRequest(c echo.Context) error {
	var r Request
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.svc.Append(c.Request().Context(), &r)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, stored)
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	requests, err := h.svc.Requests(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	start, end := pg.Window(len(requests))
	return c.JSON(http.StatusOK, pagination.NewResponse(requests[start:end], len(requests), pg.Limit, pg.Offset))
}

func (h *Handler) RecentRequests(c echo.Context) error {
	last := DefaultRecent
	if v := c.QueryParam("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "last must be a positive integer")
		}
		last = n
	}
	requests, err := h.svc.Recent(c.Request().Context(), last)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *Handler) GetPitch(c echo.Context) error {
	return c.JSON(http.StatusOK, PitchDocument())
}

func mapServiceError(err error) error {
	if errors.Is(err, ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
