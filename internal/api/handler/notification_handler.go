package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/service"
)

// NotificationHandler exposes the client's notification poller and feed.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

type notificationsResponse struct {
	Unread int                   `json:"unread"`
	Items  []domain.Notification `json:"items"`
}

func (h *NotificationHandler) poller(c echo.Context) (*service.Workspace, *service.NotificationPoller, error) {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return nil, nil, err
	}
	p := ws.Poller()
	if p == nil {
		return nil, nil, domain.ErrForbidden
	}
	return ws, p, nil
}

// List returns the retained notifications, newest first.
//
// @Summary      Notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	ws, p, err := h.poller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationsResponse{Unread: p.Unread(), Items: ws.Feed.Recent()})
}

// Clear marks every notification as read.
//
// @Summary      Clear notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /notifications/clear [post]
func (h *NotificationHandler) Clear(c echo.Context) error {
	ws, p, err := h.poller(c)
	if err != nil {
		return err
	}
	p.Clear()
	return c.JSON(http.StatusOK, notificationsResponse{Unread: 0, Items: ws.Feed.Recent()})
}

// Refresh runs a poll cycle now. A cycle already in flight is reported as
// 409 and not duplicated.
//
// @Summary      Refresh notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Failure      409  {object}  map[string]string
// @Router       /notifications/refresh [post]
func (h *NotificationHandler) Refresh(c echo.Context) error {
	ws, p, err := h.poller(c)
	if err != nil {
		return err
	}
	if _, err := p.Poll(c.Request().Context()); err != nil {
		if errors.Is(err, service.ErrPollInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, notificationsResponse{Unread: p.Unread(), Items: ws.Feed.Recent()})
}
