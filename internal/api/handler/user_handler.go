package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

// userForm is shared by the directory screens and the profile. Nil fields
// are not part of the change.
type userForm struct {
	Name       *string          `json:"name" validate:"omitempty,min=3"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	Phone      *string          `json:"phone" validate:"omitempty,phone"`
	Address    *string          `json:"address" validate:"omitempty,min=10"`
	Company    *string          `json:"company" validate:"omitempty,min=2"`
	Department *string          `json:"department"`
	Salary     *decimal.Decimal `json:"salary"`
	Role       *string          `json:"role" validate:"omitempty,oneof=admin employee client"`
	Status     *string          `json:"status" validate:"omitempty,oneof=active inactive"`
	Password   *string          `json:"password" validate:"omitempty,min=6"`
}

// changes converts the form to a backend payload and lists the fields it
// touches, for the capability check.
func (f userForm) changes() (ports.UserUpdate, []domain.Field) {
	out := ports.UserUpdate{}
	var touched []domain.Field
	set := func(field domain.Field, v any) {
		out[field] = v
		touched = append(touched, field)
	}
	if f.Name != nil {
		set(domain.FieldName, *f.Name)
	}
	if f.Email != nil {
		set(domain.FieldEmail, *f.Email)
	}
	if f.Phone != nil {
		set(domain.FieldPhone, *f.Phone)
	}
	if f.Address != nil {
		set(domain.FieldAddress, *f.Address)
	}
	if f.Company != nil {
		set(domain.FieldCompany, *f.Company)
	}
	if f.Department != nil {
		set(domain.FieldDepartment, *f.Department)
	}
	if f.Salary != nil {
		set(domain.FieldSalary, json.RawMessage(f.Salary.String()))
	}
	if f.Role != nil {
		set(domain.FieldRole, *f.Role)
	}
	if f.Status != nil {
		set(domain.FieldStatus, *f.Status)
	}
	if f.Password != nil && *f.Password != "" {
		set(domain.FieldPassword, *f.Password)
	}
	return out, touched
}

// check applies the rules validator tags cannot express. create demands
// the fields a new record of collection needs.
func (f userForm) check(collection string, create bool) error {
	fields := map[string]string{}
	if f.Salary != nil && !f.Salary.IsPositive() {
		fields["salary"] = "Salary must be greater than 0"
	}
	if create {
		if f.Name == nil {
			fields["name"] = "Name is required"
		}
		if f.Email == nil {
			fields["email"] = "Email is required"
		}
		if f.Password == nil || *f.Password == "" {
			fields["password"] = "Password is required"
		}
		if collection == ports.CollectionClients && f.Company == nil {
			fields["company"] = "Company is required"
		}
		if collection == ports.CollectionEmployees && f.Salary == nil {
			fields["salary"] = "Salary is required"
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UserHandler serves one user collection: /users, /employees or /clients.
// All of them are admin surfaces.
type UserHandler struct {
	collection string
	role       domain.Role
}

// NewUserHandler binds a handler to collection. role, when set, is forced
// on created records.
func NewUserHandler(collection string, role domain.Role) *UserHandler {
	return &UserHandler{collection: collection, role: role}
}

// List returns a page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search  query     string  false  "Search"
// @Param        status  query     string  false  "Status"
// @Success      200     {object}  listResponse[domain.User]
// @Router       /users [get]
// @Router       /employees [get]
// @Router       /clients [get]
func (h *UserHandler) List(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	params := listParams(c)
	if h.role != "" {
		params.Role = string(h.role)
	}
	users, page, err := ws.Backend.ListUsers(c.Request().Context(), h.collection, params)
	if err != nil {
		return err
	}
	for i := range users {
		users[i] = users[i].RedactFor(id.Role)
	}
	return c.JSON(http.StatusOK, listResponse[domain.User]{Items: users, Pagination: page})
}

// Get returns one user.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	u, err := ws.Backend.GetUser(c.Request().Context(), h.collection, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.RedactFor(id.Role))
}

// Create adds a user to the collection.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      userForm  true  "User"
// @Success      201   {object}  domain.User
// @Failure      422   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	return h.save(c, true, false)
}

// Update edits a user.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string    true  "User ID"
// @Param        body  body      userForm  true  "Changes"
// @Success      200   {object}  domain.User
// @Failure      422   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	return h.save(c, false, false)
}

// Patch sends only the fields present in the body.
//
// @Summary      Patch user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string    true  "User ID"
// @Param        body  body      userForm  true  "Changes"
// @Success      200   {object}  domain.User
// @Failure      422   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Patch(c echo.Context) error {
	return h.save(c, false, true)
}

func (h *UserHandler) save(c echo.Context, create, partial bool) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var form userForm
	if err := bindValid(c, &form); err != nil {
		return err
	}
	if err := form.check(h.collection, create); err != nil {
		return err
	}
	payload, touched := form.changes()
	if err := domain.CheckEditable(id.Role, touched); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var u *domain.User
	if create {
		if h.role != "" {
			payload[domain.FieldRole] = string(h.role)
		}
		u, err = ws.Backend.CreateUser(ctx, h.collection, payload)
	} else if partial {
		u, err = ws.Backend.PatchUser(ctx, h.collection, c.Param("id"), payload)
	} else {
		u, err = ws.Backend.UpdateUser(ctx, h.collection, c.Param("id"), payload)
	}
	if err != nil {
		return err
	}

	code := http.StatusOK
	if create {
		code = http.StatusCreated
	}
	return c.JSON(code, u.RedactFor(id.Role))
}

// Delete removes a user.
//
// @Summary      Delete user
// @Tags         users
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	ws, _, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := ws.Backend.DeleteUser(c.Request().Context(), h.collection, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ProfileHandler serves /profile for every role.
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

type profileResponse struct {
	User   domain.User                        `json:"user"`
	Fields map[domain.Field]domain.Capability `json:"fields"`
}

// Get returns the caller's own record and what they may edit on it.
//
// @Summary      Own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileResponse
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	u, err := ws.Backend.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: u.RedactFor(id.Role), Fields: domain.FieldCapabilities(id.Role)})
}

// Update edits the caller's own record. Fields the role may not edit are
// refused before anything is sent.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      userForm  true  "Changes"
// @Success      200   {object}  profileResponse
// @Failure      422   {object}  map[string]string
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	ws, id, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	var form userForm
	if err := bindValid(c, &form); err != nil {
		return err
	}
	if err := form.check("", false); err != nil {
		return err
	}
	payload, touched := form.changes()
	if err := domain.CheckEditable(id.Role, touched); err != nil {
		return err
	}
	u, err := ws.Backend.UpdateMe(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: u.RedactFor(id.Role), Fields: domain.FieldCapabilities(id.Role)})
}
