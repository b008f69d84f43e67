package registry

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
	api.GET("/patients", h.ListPatients)
	api.PUT("/patients", h.UpsertPatient)

	api.GET("/patients/:id/notes", h.ListPatientNotes)
	api.POST("/patients/:id/notes", h.AddNote)
	api.GET("/notes", h.ListNotes)
}

type addNoteRequest struct {
	Author string `json:"author"`
	Note   string `json:"note"`
}

func (h *Handler) UpsertPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.svc.UpsertPatient(c.Request().Context(), &p)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, stored)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, err := h.svc.Patients(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	start, end := pg.Window(len(patients))
	return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], len(patients), pg.Limit, pg.Offset))
}

func (h *Handler) AddNote(c echo.Context) error {
	var req addNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.AddNote(c.Request().Context(), c.Param("id"), req.Author, req.Note)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListPatientNotes(c echo.Context) error {
	return h.listNotes(c, c.Param("id"))
}

func (h *Handler) ListNotes(c echo.Context) error {
	return h.listNotes(c, "")
}

func (h *Handler) listNotes(c echo.Context, patientID string) error {
	pg := pagination.FromContext(c)
	notes, err := h.svc.Notes(c.Request().Context(), patientID)
	if err != nil {
		return mapServiceError(err)
	}
	start, end := pg.Window(len(notes))
	return c.JSON(http.StatusOK, pagination.NewResponse(notes[start:end], len(notes), pg.Limit, pg.Offset))
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
