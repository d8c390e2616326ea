package clinic

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicsys/clinic/internal/platform/auth"
	"github.com/clinicsys/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints: admin, staff, reader
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff, auth.RoleReader))
	readGroup.GET("/clinics", h.ListClinics)
	readGroup.GET("/clinics/:id", h.GetClinic)
	readGroup.GET("/clinics/:id/appointments", h.ListClinicAppointments)
	readGroup.GET("/doctors", h.ListDoctors)
	readGroup.GET("/doctors/:id", h.GetDoctor)
	readGroup.GET("/doctors/:id/appointments", h.ListDoctorAppointments)
	readGroup.GET("/patients", h.ListPatients)
	readGroup.GET("/patients/:id", h.GetPatient)
	readGroup.GET("/patients/:id/appointments", h.ListPatientAppointments)
	readGroup.GET("/appointments", h.ListAppointments)
	readGroup.GET("/appointments/:id", h.GetAppointment)

	// Write endpoints: admin, staff
	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))
	writeGroup.POST("/clinics", h.CreateClinic)
	writeGroup.PUT("/clinics/:id", h.UpdateClinic)
	writeGroup.DELETE("/clinics/:id", h.DeleteClinic)
	writeGroup.POST("/doctors", h.CreateDoctor)
	writeGroup.PUT("/doctors/:id", h.UpdateDoctor)
	writeGroup.DELETE("/doctors/:id", h.DeleteDoctor)
	writeGroup.POST("/patients", h.CreatePatient)
	writeGroup.PUT("/patients/:id", h.UpdatePatient)
	writeGroup.DELETE("/patients/:id", h.DeletePatient)
	writeGroup.POST("/appointments", h.CreateAppointment)
	writeGroup.PUT("/appointments/:id", h.UpdateAppointment)
	writeGroup.DELETE("/appointments/:id", h.DeleteAppointment)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func pageParams(c echo.Context) (pagination.Params, error) {
	p, err := pagination.FromContext(c)
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

// storeError maps a service error to an HTTP error. Only validation
// failures expose their message; everything else is logged by the error
// handler and reported generically.
func storeError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func notFound(entity string) error {
	return echo.NewHTTPError(http.StatusNotFound, entity+" not found")
}

// checkBodyID reconciles the id in a PUT body with the path id. A zero body
// id takes the path id.
func checkBodyID(pathID int64, bodyID *int64) error {
	if *bodyID != 0 && *bodyID != pathID {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("id mismatch: path %d, body %d", pathID, *bodyID))
	}
	*bodyID = pathID
	return nil
}

func created(c echo.Context, id int64, body interface{}) error {
	c.Response().Header().Set(echo.HeaderLocation,
		strings.TrimSuffix(c.Request().URL.Path, "/")+"/"+strconv.FormatInt(id, 10))
	return c.JSON(http.StatusCreated, body)
}

// -- Clinic Handlers --

func (h *Handler) ListClinics(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	clinics, err := h.svc.ListClinics(c.Request().Context(), p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(clinics, len(clinics), p))
}

func (h *Handler) GetClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	clinic, err := h.svc.GetClinic(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	if clinic == nil {
		return notFound("clinic")
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) CreateClinic(c echo.Context) error {
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.CreateClinic(c.Request().Context(), &clinic)
	if err != nil {
		return storeError(err)
	}
	return created(c, out.ID, out)
}

func (h *Handler) UpdateClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := checkBodyID(id, &clinic.ID); err != nil {
		return err
	}
	out, err := h.svc.UpdateClinic(c.Request().Context(), &clinic)
	if err != nil {
		return storeError(err)
	}
	if out == nil {
		return notFound("clinic")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClinic(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListClinicAppointments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	clinic, err := h.svc.GetClinic(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if clinic == nil {
		return notFound("clinic")
	}
	appts, err := h.svc.ListClinicAppointments(ctx, id, p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, len(appts), p))
}

// -- Doctor Handlers --

func (h *Handler) ListDoctors(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	doctors, err := h.svc.ListDoctors(c.Request().Context(), p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, len(doctors), p))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	if doctor == nil {
		return notFound("doctor")
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var doctor Doctor
	if err := c.Bind(&doctor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.CreateDoctor(c.Request().Context(), &doctor)
	if err != nil {
		return storeError(err)
	}
	return created(c, out.ID, out)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var doctor Doctor
	if err := c.Bind(&doctor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := checkBodyID(id, &doctor.ID); err != nil {
		return err
	}
	out, err := h.svc.UpdateDoctor(c.Request().Context(), &doctor)
	if err != nil {
		return storeError(err)
	}
	if out == nil {
		return notFound("doctor")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListDoctorAppointments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	doctor, err := h.svc.GetDoctor(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if doctor == nil {
		return notFound("doctor")
	}
	appts, err := h.svc.ListDoctorAppointments(ctx, id, p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, len(appts), p))
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	patients, err := h.svc.ListPatients(c.Request().Context(), p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, len(patients), p))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patient, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	if patient == nil {
		return notFound("patient")
	}
	return c.JSON(http.StatusOK, patient)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var patient Patient
	if err := c.Bind(&patient); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.CreatePatient(c.Request().Context(), &patient)
	if err != nil {
		return storeError(err)
	}
	return created(c, out.ID, out)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patient Patient
	if err := c.Bind(&patient); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := checkBodyID(id, &patient.ID); err != nil {
		return err
	}
	out, err := h.svc.UpdatePatient(c.Request().Context(), &patient)
	if err != nil {
		return storeError(err)
	}
	if out == nil {
		return notFound("patient")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	patient, err := h.svc.GetPatient(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if patient == nil {
		return notFound("patient")
	}
	appts, err := h.svc.ListPatientAppointments(ctx, id, p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, len(appts), p))
}

// -- Appointment Handlers --

func (h *Handler) ListAppointments(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return err
	}
	appts, err := h.svc.ListAppointments(c.Request().Context(), p.Skip, p.Take)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, len(appts), p))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	if appt == nil {
		return notFound("appointment")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var appt Appointment
	if err := c.Bind(&appt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.CreateAppointment(c.Request().Context(), &appt)
	if err != nil {
		return storeError(err)
	}
	return created(c, out.ID, out)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var appt Appointment
	if err := c.Bind(&appt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := checkBodyID(id, &appt.ID); err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := h.svc.GetAppointment(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if existing == nil {
		return notFound("appointment")
	}
	out, err := h.svc.UpdateAppointment(ctx, &appt)
	if err != nil {
		return storeError(err)
	}
	if out == nil {
		return notFound("appointment")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
