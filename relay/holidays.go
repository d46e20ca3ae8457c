package relay

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/trickle/pkg/holidays"
)

func (s *Server) handleListHolidays(c *fiber.Ctx) error {
	vars.Add(varHolidayRequests, 1)

	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 0 {
			return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid year: %q", raw))
		}
		year = y
	}

	list, err := s.config.Holidays.List(c.UserContext(), year)
	if err != nil {
		return s.storeFailure(c, err)
	}
	if list == nil {
		list = []holidays.Holiday{}
	}
	return c.JSON(list)
}

func (s *Server) handleGetHoliday(c *fiber.Ctx) error {
	vars.Add(varHolidayRequests, 1)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid id: %q", c.Params("id")))
	}

	h, err := s.config.Holidays.Get(c.UserContext(), id)
	if err != nil {
		return s.storeFailure(c, err)
	}
	return c.JSON(holidays.Response{Holidays: []holidays.Holiday{*h}})
}

func (s *Server) handleCreateHoliday(c *fiber.Ctx) error {
	vars.Add(varHolidayRequests, 1)

	var in holidays.Holiday
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}
	if err := in.Validate(); err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err)
	}

	h, err := s.config.Holidays.Create(c.UserContext(), in)
	if err != nil {
		return s.storeFailure(c, err)
	}

	s.logger.Debug("holiday added", "id", h.ID, "title", h.Title)
	return c.Status(fiber.StatusCreated).JSON(holidays.Response{
		Holidays: []holidays.Holiday{*h},
		Message:  holidays.MessageAdded,
	})
}

func (s *Server) handleUpdateHoliday(c *fiber.Ctx) error {
	vars.Add(varHolidayRequests, 1)

	var in holidays.Holiday
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}
	if in.ID <= 0 {
		return fail(c, fiber.StatusUnprocessableEntity, fmt.Errorf("%w: id is required", holidays.ErrInvalidHoliday))
	}
	if err := in.Validate(); err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err)
	}

	h, err := s.config.Holidays.Update(c.UserContext(), in)
	if err != nil {
		return s.storeFailure(c, err)
	}
	return c.JSON(holidays.Response{
		Holidays: []holidays.Holiday{*h},
		Message:  holidays.MessageUpdated,
	})
}

func (s *Server) handleDeleteHoliday(c *fiber.Ctx) error {
	vars.Add(varHolidayRequests, 1)

	var in holidays.DeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}

	if err := s.config.Holidays.Delete(c.UserContext(), in.ID); err != nil {
		return s.storeFailure(c, err)
	}
	return c.JSON(holidays.Response{
		Holidays: []holidays.Holiday{},
		Message:  holidays.MessageDeleted,
	})
}

func (s *Server) storeFailure(c *fiber.Ctx, err error) error {
	switch {
	case holidays.IsNotFound(err):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, holidays.ErrInvalidHoliday):
		return fail(c, fiber.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("holiday store failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, err)
	}
}
