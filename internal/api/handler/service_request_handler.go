package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// ServiceRequestHandler serves the staff review queue under
// /service-requests and the client's /request-service form.
type ServiceRequestHandler struct{}

func NewServiceRequestHandler() *ServiceRequestHandler {
	return &ServiceRequestHandler{}
}

// List returns service requests for review.
//
// @Summary      List service requests
// @Tags         service-requests
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Success      200     {object}  listResponse[domain.ServiceRequest]
// @Router       /service-requests [get]
func (h *ServiceRequestHandler) List(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	reqs, page, err := ws.Backend.ListServiceRequests(c.Request().Context(), listParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.ServiceRequest]{Items: reqs, Pagination: page})
}

// Get returns one service request.
//
// @Summary      Get service request
// @Tags         service-requests
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  domain.ServiceRequest
// @Router       /service-requests/{id} [get]
func (h *ServiceRequestHandler) Get(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	r, err := ws.Backend.GetServiceRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

type approveRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"dive,required"`
}

// Approve accepts a pending request; the backend creates its project.
// Admin only.
//
// @Summary      Approve service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Param        id    path      string          true   "Request ID"
// @Param        body  body      approveRequest  false  "Employees to assign"
// @Success      200   {object}  domain.ServiceRequest
// @Failure      409   {object}  map[string]string
// @Router       /service-requests/{id}/approve [post]
func (h *ServiceRequestHandler) Approve(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req approveRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.checkDecidable(c, ws.Backend); err != nil {
		return err
	}
	r, err := ws.Backend.ApproveServiceRequest(ctx, c.Param("id"), req.EmployeeIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Reject declines a pending request. Admin only.
//
// @Summary      Reject service request
// @Tags         service-requests
// @Param        id   path  string  true  "Request ID"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Router       /service-requests/{id}/reject [post]
func (h *ServiceRequestHandler) Reject(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.checkDecidable(c, ws.Backend); err != nil {
		return err
	}
	if err := ws.Backend.RejectServiceRequest(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a service request. Admin only.
//
// @Summary      Delete service request
// @Tags         service-requests
// @Param        id   path  string  true  "Request ID"
// @Success      204
// @Router       /service-requests/{id} [delete]
func (h *ServiceRequestHandler) Delete(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Backend.DeleteServiceRequest(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ServiceRequestHandler) checkDecidable(c echo.Context, backend ports.ServiceRequestGateway) error {
	r, err := backend.GetServiceRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !r.Decidable() {
		return fmt.Errorf("%w: request is already %s", domain.ErrConflict, r.Status)
	}
	return nil
}

type requestServiceResponse struct {
	ServiceTypes []domain.ServiceType    `json:"service_types"`
	Requests     []domain.ServiceRequest `json:"requests"`
}

// RequestServicePage returns the active service types and the client's own
// requests.
//
// @Summary      Request-service surface
// @Tags         request-service
// @Produce      json
// @Success      200  {object}  requestServiceResponse
// @Router       /request-service [get]
func (h *ServiceRequestHandler) RequestServicePage(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	types, err := ws.Backend.ListServiceTypes(ctx, "active")
	if err != nil {
		return err
	}
	mine, err := ws.Backend.ClientServiceRequests(ctx, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestServiceResponse{ServiceTypes: types, Requests: mine})
}

type createServiceRequest struct {
	Title         string `json:"title" validate:"required,min=3"`
	Description   string `json:"description" validate:"required,min=10"`
	ServiceTypeID string `json:"service_type_id" validate:"required"`
}

// RequestService submits a new service request for the calling client.
//
// @Summary      Submit service request
// @Tags         request-service
// @Accept       json
// @Produce      json
// @Param        body  body      createServiceRequest  true  "Request"
// @Success      201   {object}  domain.ServiceRequest
// @Failure      422   {object}  map[string]string
// @Router       /request-service [post]
func (h *ServiceRequestHandler) RequestService(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req createServiceRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	r, err := ws.Backend.CreateServiceRequest(c.Request().Context(), ports.CreateServiceRequestInput{
		Title:         req.Title,
		Description:   req.Description,
		ServiceTypeID: req.ServiceTypeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}
