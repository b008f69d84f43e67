package messaging

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
	api.GET("/chat", h.ListMessages)
	api.POST("/chat", h.AppendMessage)
	api.GET("/chat/recent", h.RecentMessages)

	api.GET("/consults", h.ListConsults)
	api.POST("/consults", h.RequestConsult)
	api.GET("/consults/recent", h.RecentConsults)
}

type appendMessageRequest struct {
	Author string `json:"author"`
	Msg    string `json:"msg"`
}

type requestConsultRequest struct {
	Profile string `json:"profile"`
	Topic   string `json:"topic"`
	Notes   string `json:"notes"`
}

// -- Chat --

func (h *Handler) AppendMessage(c echo.Context) error {
	var req appendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.AppendMessage(c.Request().Context(), req.Author, req.Msg)
	if err != nil {
		return mapServiceError(err)
	}
	if m == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMessages(c echo.Context) error {
	pg := pagination.FromContext(c)
	msgs, err := h.svc.Messages(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	start, end := pg.Window(len(msgs))
	return c.JSON(http.StatusOK, pagination.NewResponse(msgs[start:end], len(msgs), pg.Limit, pg.Offset))
}

func (h *Handler) RecentMessages(c echo.Context) error {
	last, err := lastParam(c)
	if err != nil {
		return err
	}
	msgs, err := h.svc.Recent(c.Request().Context(), last)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// -- Micro-consults --

func (h *Handler) RequestConsult(c echo.Context) error {
	var req requestConsultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cr, err := h.svc.RequestConsult(c.Request().Context(), req.Profile, req.Topic, req.Notes)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *Handler) ListConsults(c echo.Context) error {
	pg := pagination.FromContext(c)
	requests, err := h.svc.Consults(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	start, end := pg.Window(len(requests))
	return c.JSON(http.StatusOK, pagination.NewResponse(requests[start:end], len(requests), pg.Limit, pg.Offset))
}

func (h *Handler) RecentConsults(c echo.Context) error {
	last, err := lastParam(c)
	if err != nil {
		return err
	}
	requests, err := h.svc.RecentConsults(c.Request().Context(), last)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

func lastParam(c echo.Context) (int, error) {
	v := c.QueryParam("last")
	if v == "" {
		return DefaultRecent, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "last must be a positive integer")
	}
	return n, nil
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
