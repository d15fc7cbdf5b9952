package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// ServiceTypeHandler serves the admin /services catalogue.
type ServiceTypeHandler struct{}

func NewServiceTypeHandler() *ServiceTypeHandler {
	return &ServiceTypeHandler{}
}

type serviceTypeRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r serviceTypeRequest) input() ports.ServiceTypeInput {
	return ports.ServiceTypeInput{Name: r.Name, Description: r.Description, Status: r.Status}
}

// List returns service types, optionally filtered by status.
//
// @Summary      List service types
// @Tags         services
// @Produce      json
// @Param        status  query    string  false  "active or inactive"
// @Success      200     {array}  domain.ServiceType
// @Router       /services [get]
func (h *ServiceTypeHandler) List(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	types, err := ws.Backend.ListServiceTypes(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}

// Get returns one service type.
//
// @Summary      Get service type
// @Tags         services
// @Produce      json
// @Param        id   path      string  true  "Service type ID"
// @Success      200  {object}  domain.ServiceType
// @Router       /services/{id} [get]
func (h *ServiceTypeHandler) Get(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	st, err := ws.Backend.GetServiceType(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// Create adds a service type.
//
// @Summary      Create service type
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        body  body      serviceTypeRequest  true  "Service type"
// @Success      201   {object}  domain.ServiceType
// @Router       /services [post]
func (h *ServiceTypeHandler) Create(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req serviceTypeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = "active"
	}
	st, err := ws.Backend.CreateServiceType(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

// Update edits a service type.
//
// @Summary      Update service type
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Service type ID"
// @Param        body  body      serviceTypeRequest  true  "Changes"
// @Success      200   {object}  domain.ServiceType
// @Router       /services/{id} [put]
func (h *ServiceTypeHandler) Update(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req serviceTypeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	st, err := ws.Backend.UpdateServiceType(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// Delete removes a service type.
//
// @Summary      Delete service type
// @Tags         services
// @Param        id   path  string  true  "Service type ID"
// @Success      204
// @Router       /services/{id} [delete]
func (h *ServiceTypeHandler) Delete(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Backend.DeleteServiceType(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MessageHandler serves /messages for every role; the backend limits each
// caller to the threads of their own projects.
type MessageHandler struct{}

func NewMessageHandler() *MessageHandler {
	return &MessageHandler{}
}

// List returns messages, optionally for one project.
//
// @Summary      List messages
// @Tags         messages
// @Produce      json
// @Param        project_id  query     string  false  "Project ID"
// @Success      200         {object}  listResponse[domain.Message]
// @Router       /messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	msgs, page, err := ws.Backend.ListMessages(c.Request().Context(), listParams(c), c.QueryParam("project_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.Message]{Items: msgs, Pagination: page})
}

// Get returns one message.
//
// @Summary      Get message
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  domain.Message
// @Router       /messages/{id} [get]
func (h *MessageHandler) Get(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	m, err := ws.Backend.GetMessage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

type messageRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	Content   string `json:"content" validate:"required,max=5000"`
}

// Create posts a message on a project thread.
//
// @Summary      Send message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        body  body      messageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Router       /messages [post]
func (h *MessageHandler) Create(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var req messageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	m, err := ws.Backend.CreateMessage(c.Request().Context(), req.ProjectID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// Delete removes a message.
//
// @Summary      Delete message
// @Tags         messages
// @Param        id   path  string  true  "Message ID"
// @Success      204
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Backend.DeleteMessage(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
