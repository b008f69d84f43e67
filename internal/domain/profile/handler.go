package profile

import (
	"errors"
	"net/http"
	"strconv"

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
	api.GET("/profiles", h.ListProfiles)
	api.POST("/profiles", h.AddProfile)
	api.PUT("/profiles/active", h.SelectActive)

	api.GET("/vitals", h.ListVitals)
	api.POST("/vitals", h.AppendVitals)

	api.GET("/passport", h.GetPassport)
	api.PUT("/passport", h.UpdatePassport)
	api.GET("/passport/export", h.ExportPassport)

	api.GET("/medications", h.ListMedications)
	api.PUT("/medications", h.SaveMedications)

	api.GET("/records", h.ListRecords)
	api.POST("/records", h.AddRecord)

	api.GET("/challenge", h.GetChallenge)
	api.POST("/challenge", h.StartChallenge)
	api.PATCH("/challenge", h.AdvanceChallenge)
}

// Request bodies. Mutating endpoints name their target profile in the body;
// an empty profile targets the session's active profile.

type selectActiveRequest struct {
	Name string `json:"name"`
}

type appendVitalsRequest struct {
	Profile string `json:"profile"`
	VitalsEntry
}

type updatePassportRequest struct {
	Profile string `json:"profile"`
	PassportInput
}

type saveMedicationsRequest struct {
	Profile     string        `json:"profile"`
	Medications textlist.List `json:"medications"`
}

type addRecordRequest struct {
	Profile string `json:"profile"`
	Name    string `json:"name"`
}

type startChallengeRequest struct {
	Profile string `json:"profile"`
	Name    string `json:"name"`
}

type advanceChallengeRequest struct {
	Profile string `json:"profile"`
	Delta   int    `json:"delta"`
}

// -- Roster --

func (h *Handler) ListProfiles(c echo.Context) error {
	roster, err := h.svc.Roster(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, roster)
}

func (h *Handler) AddProfile(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	roster, err := h.svc.AddProfile(c.Request().Context(), &p)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, roster)
}

func (h *Handler) SelectActive(c echo.Context) error {
	var req selectActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	roster, err := h.svc.SelectActive(c.Request().Context(), req.Name)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, roster)
}

// -- Vitals log --

func (h *Handler) AppendVitals(c echo.Context) error {
	var req appendVitalsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entries, err := h.svc.AppendVitals(c.Request().Context(), req.Profile, req.VitalsEntry)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, entries)
}

func (h *Handler) ListVitals(c echo.Context) error {
	last := DefaultVitalsTail
	if v := c.QueryParam("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "last must be a positive integer")
		}
		last = n
	}
	entries, err := h.svc.Vitals(c.Request().Context(), c.QueryParam("profile"), last)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// -- Health passport --

func (h *Handler) GetPassport(c echo.Context) error {
	p, err := h.svc.Passport(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePassport(c echo.Context) error {
	var req updatePassportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePassport(c.Request().Context(), req.Profile, req.PassportInput)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ExportPassport(c echo.Context) error {
	export, err := h.svc.ExportPassport(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, export)
}

// -- Medication list --

func (h *Handler) ListMedications(c echo.Context) error {
	meds, err := h.svc.Medications(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, meds)
}

func (h *Handler) SaveMedications(c echo.Context) error {
	var req saveMedicationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	meds, err := h.svc.SaveMedications(c.Request().Context(), req.Profile, req.Medications)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, meds)
}

// -- Record locker --

func (h *Handler) ListRecords(c echo.Context) error {
	records, err := h.svc.Records(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) AddRecord(c echo.Context) error {
	var req addRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.AddRecord(c.Request().Context(), req.Profile, req.Name)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// -- Wellness challenge --

func (h *Handler) GetChallenge(c echo.Context) error {
	ch, err := h.svc.Challenge(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) StartChallenge(c echo.Context) error {
	var req startChallengeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ch, err := h.svc.StartChallenge(c.Request().Context(), req.Profile, req.Name)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) AdvanceChallenge(c echo.Context) error {
	var req advanceChallengeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ch, err := h.svc.AdvanceChallenge(c.Request().Context(), req.Profile, req.Delta)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, ch)
}

// mapServiceError translates store errors to HTTP status codes.
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
