package schedule

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Booking endpoints – all front-office and clinical roles
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDentist, auth.RoleAssistant, auth.RoleReceptionist))
	staff.GET("/appointments", h.ListAppointments)
	staff.GET("/appointments/check-conflict", h.CheckConflict)
	staff.GET("/appointments/:id", h.GetAppointment)
	staff.POST("/appointments", h.CreateAppointment)
	staff.PUT("/appointments/:id", h.UpdateAppointment)
	staff.DELETE("/appointments/:id", h.DeleteAppointment)
	staff.PATCH("/appointments/:id/status", h.UpdateStatus)
	staff.GET("/calendar", h.Calendar)
	staff.GET("/availability-windows", h.ListWindows)
	staff.GET("/closures", h.ListClosures)
	staff.GET("/weekly-closures", h.ListWeeklyClosures)

	// Practice configuration – admin and dentists only
	config := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDentist))
	config.POST("/availability-windows", h.CreateWindow)
	config.PUT("/availability-windows/:id", h.UpdateWindow)
	config.DELETE("/availability-windows/:id", h.DeleteWindow)
	config.POST("/closures", h.CreateClosure)
	config.DELETE("/closures/:id", h.DeleteClosure)
	config.POST("/weekly-closures", h.CreateWeeklyClosure)
	config.PUT("/weekly-closures/:id", h.UpdateWeeklyClosure)
	config.DELETE("/weekly-closures/:id", h.DeleteWeeklyClosure)
}

// appointmentRequest is the wire form of an appointment payload. Timestamps
// arrive as local YYYY-MM-DDTHH:MM strings from the calendar UI.
type appointmentRequest struct {
	Title       string  `json:"title"`
	ServiceType *string `json:"service_type"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	PatientID   string  `json:"patient_id"`
	DoctorID    *string `json:"doctor_id"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes"`
}

func (r *appointmentRequest) toInput() (*AppointmentInput, error) {
	startsAt, err := ParseDateTime(r.StartsAt)
	if err != nil {
		return nil, err
	}
	var endsAt time.Time
	if r.EndsAt != "" {
		endsAt, err = ParseDateTime(r.EndsAt)
		if err != nil {
			return nil, err
		}
	}
	patientID, err := uuid.Parse(r.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient_id")
	}
	var doctorID *uuid.UUID
	if r.DoctorID != nil && *r.DoctorID != "" {
		did, err := uuid.Parse(*r.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("invalid doctor_id")
		}
		doctorID = &did
	}
	return &AppointmentInput{
		Title:       r.Title,
		ServiceType: r.ServiceType,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		PatientID:   patientID,
		DoctorID:    doctorID,
		Status:      r.Status,
		Notes:       r.Notes,
	}, nil
}

// appointmentResponse carries the stored appointment plus the advisory
// scheduling warning, if any.
type appointmentResponse struct {
	Data    *Appointment `json:"data"`
	Warning *string      `json:"warning,omitempty"`
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, warning, err := h.svc.CreateAppointment(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, appointmentResponse{Data: appt, Warning: warning})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)

	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		appts, total, err := h.svc.ListAppointmentsByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
	}

	appts, total, err := h.svc.ListAppointments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, warning, err := h.svc.UpdateAppointment(c.Request().Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrCompletedAdminOnly):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, appointmentResponse{Data: appt, Warning: warning})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, ErrCompletedAdminOnly) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

// CheckConflict answers the pre-flight question the booking form asks while
// the user is still picking a slot. The response never blocks anything on
// its own.
func (h *Handler) CheckConflict(c echo.Context) error {
	startsAt, err := ParseDateTime(c.QueryParam("starts_at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	endsAt, err := ParseDateTime(c.QueryParam("ends_at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var doctorID *uuid.UUID
	if d := c.QueryParam("doctor_id"); d != "" {
		did, err := uuid.Parse(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = &did
	}
	var excludeID *uuid.UUID
	if e := c.QueryParam("exclude_id"); e != "" {
		eid, err := uuid.Parse(e)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude_id")
		}
		excludeID = &eid
	}

	conflict, err := h.svc.CheckConflict(c.Request().Context(), doctorID, startsAt, endsAt, excludeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := map[string]interface{}{"conflict": conflict}
	if conflict {
		resp["message"] = ErrConflict.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// Calendar serves both grid views. Malformed month/week parameters fall back
// to the current period rather than erroring, so stale bookmarks still load
// a calendar.
func (h *Handler) Calendar(c echo.Context) error {
	ctx := c.Request().Context()

	var doctorID *uuid.UUID
	if d := c.QueryParam("doctor"); d != "" && d != "all" {
		did, err := uuid.Parse(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor")
		}
		doctorID = &did
	}

	switch c.QueryParam("view") {
	case "week":
		anchor := time.Now()
		if t := ParseDate(c.QueryParam("week")); t != nil {
			anchor = *t
		}
		weekStart := DateOf(anchor).AddDate(0, 0, -(ISOWeekday(anchor) - 1))
		grid, err := h.svc.WeekView(ctx, weekStart, doctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, grid)
	default:
		now := time.Now()
		year, month := now.Year(), now.Month()
		if m := c.QueryParam("month"); m != "" {
			if t, err := time.ParseInLocation("2006-01", m, time.Local); err == nil {
				year, month = t.Year(), t.Month()
			}
		}
		grid, err := h.svc.MonthView(ctx, year, month, doctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, grid)
	}
}

// -- Availability windows --

type windowRequest struct {
	DoctorID  string  `json:"doctor_id"`
	DayOfWeek int     `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Color     *string `json:"color"`
}

func (r *windowRequest) toInput() (*WindowInput, error) {
	doctorID, err := uuid.Parse(r.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("invalid doctor_id")
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return nil, err
	}
	return &WindowInput{
		DoctorID:    doctorID,
		DayOfWeek:   r.DayOfWeek,
		StartMinute: start,
		EndMinute:   end,
		Color:       r.Color,
	}, nil
}

func (h *Handler) CreateWindow(c echo.Context) error {
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w, err := h.svc.CreateWindow(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) UpdateWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w, err := h.svc.UpdateWindow(c.Request().Context(), id, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteWindow(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListWindows(c echo.Context) error {
	var doctorID *uuid.UUID
	if d := c.QueryParam("doctor_id"); d != "" {
		did, err := uuid.Parse(d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = &did
	}
	windows, err := h.svc.ListWindows(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, windows)
}

// -- Practice closures --

type closureRequest struct {
	Type     string  `json:"type"`
	Title    *string `json:"title"`
	StartsAt string  `json:"starts_at"`
	EndsAt   string  `json:"ends_at"`
}

func (h *Handler) CreateClosure(c echo.Context) error {
	var req closureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	startsAt, err := ParseDateTime(req.StartsAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	endsAt, err := ParseDateTime(req.EndsAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := h.svc.CreateClosure(c.Request().Context(), &ClosureInput{
		Type:     req.Type,
		Title:    req.Title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) DeleteClosure(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteClosure(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListClosures(c echo.Context) error {
	closures, err := h.svc.ListClosures(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, closures)
}

// -- Weekly closures --

func (h *Handler) CreateWeeklyClosure(c echo.Context) error {
	var in WeeklyClosureInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	wc, err := h.svc.CreateWeeklyClosure(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, wc)
}

func (h *Handler) UpdateWeeklyClosure(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in WeeklyClosureInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	wc, err := h.svc.UpdateWeeklyClosure(c.Request().Context(), id, &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, wc)
}

func (h *Handler) DeleteWeeklyClosure(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteWeeklyClosure(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListWeeklyClosures(c echo.Context) error {
	wcs, err := h.svc.ListWeeklyClosures(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, wcs)
}
