package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetdeck/fleetdeck/models"
)

// StackActionRequest represents a stack lifecycle action request.
type StackActionRequest struct {
	Action   string   `json:"action" validate:"required,oneof=up down restart pull"`
	Services []string `json:"services" validate:"omitempty,dive,required"`
}

// StacksResponse represents a list of stacks.
type StacksResponse struct {
	Count  int            `json:"count"`
	Stacks []models.Stack `json:"stacks"`
}

// listStacks returns every stack derived from the current container
// snapshot.
func (s *Server) listStacks(c echo.Context) error {
	stacks, err := s.orch.ListStacks(c.Request().Context())
	if err != nil {
		return translateError(err, "")
	}

	if stacks == nil {
		stacks = []models.Stack{}
	}

	return c.JSON(http.StatusOK, StacksResponse{
		Count:  len(stacks),
		Stacks: stacks,
	})
}

// getStack returns a single stack by id.
func (s *Server) getStack(c echo.Context) error {
	id := c.Param("id")

	st, err := s.orch.GetStack(c.Request().Context(), id)
	if err != nil {
		return translateError(err, id)
	}

	return c.JSON(http.StatusOK, st)
}

// performStackAction applies a lifecycle action to a stack or a subset of
// its services.
func (s *Server) performStackAction(c echo.Context) error {
	id := c.Param("id")

	var req StackActionRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	outcome, err := s.orch.PerformAction(c.Request().Context(), id, models.ActionRequest{
		Action:   models.Action(req.Action),
		Services: req.Services,
	})
	if err != nil {
		return translateError(err, id)
	}

	return c.JSON(http.StatusOK, outcome)
}
