package prescription

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viatra/viatra/pkg/textlist"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.Generate)
}

type generateRequest struct {
	Patient      string        `json:"patient"`
	Meds         textlist.List `json:"meds"`
	Instructions string        `json:"instructions"`
}

func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.Generate(req.Patient, req.Meds, req.Instructions)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, doc)
}
