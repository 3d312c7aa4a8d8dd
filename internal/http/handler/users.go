package handler

import (
	"github.com/gofiber/fiber/v2"

	"medregistry/internal/service"
)

type createUserRequest struct {
	AdminID    string `json:"adminId"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// CreateUser registers an account on behalf of an admin.
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		u, err := svc.CreateUser(c.UserContext(), req.AdminID, service.SignupInput{
			Email:      req.Email,
			Password:   req.Password,
			Name:       req.Name,
			Department: req.Department,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListUsers returns every account; admin only.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.ListUsers(c.UserContext(), c.Query("adminId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"users": users})
	}
}

// DeleteUser removes a regular user; admin only.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.DeleteUser(c.UserContext(), c.Query("adminId"), c.Params("userId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
