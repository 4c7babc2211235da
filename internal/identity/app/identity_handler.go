package app

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"room_chat_service/pkg/errs"
	"room_chat_service/pkg/logger"
)

// IdentityHandler fiber REST surface of the auth provider
type IdentityHandler struct {
	Usecase AuthUseCase
}

type signUpReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedReq struct {
	Provider    string `json:"provider"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type tokenReq struct {
	Token string `json:"token"`
}

// SignUp POST /signup
func (h *IdentityHandler) SignUp(c *fiber.Ctx) error {
	var req signUpReq
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errs.Validation("malformed request body"))
	}

	t, err := h.Usecase.SignUp(c.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		logger.Log.Error("signup failed", zap.String("email", req.Email), zap.String("err", err.Error()))
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": t})
}

// SignIn POST /signin
func (h *IdentityHandler) SignIn(c *fiber.Ctx) error {
	var req signInReq
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errs.Validation("malformed request body"))
	}

	t, err := h.Usecase.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		logger.Log.Error("signin failed", zap.String("email", req.Email), zap.String("err", err.Error()))
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": t})
}

// FederatedSignIn POST /federated
func (h *IdentityHandler) FederatedSignIn(c *fiber.Ctx) error {
	var req federatedReq
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errs.Validation("malformed request body"))
	}

	t, err := h.Usecase.FederatedSignIn(c.Context(), req.Provider, req.Email, req.DisplayName)
	if err != nil {
		logger.Log.Error("federated signin failed", zap.String("email", req.Email), zap.String("err", err.Error()))
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": t})
}

// SignOut POST /signout
func (h *IdentityHandler) SignOut(c *fiber.Ctx) error {
	var req tokenReq
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errs.Validation("malformed request body"))
	}

	if err := h.Usecase.SignOut(c.Context(), req.Token); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Me GET /me?token=...
func (h *IdentityHandler) Me(c *fiber.Ctx) error {
	identity, err := h.Usecase.CurrentIdentity(c.Context(), c.Query("token"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "identity": identity})
}

// Reconnect POST /reconnect
func (h *IdentityHandler) Reconnect(c *fiber.Ctx) error {
	var req tokenReq
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errs.Validation("malformed request body"))
	}

	if err := h.Usecase.ReconnectSession(c.Context(), req.Token); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func respondErr(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = fiber.StatusBadRequest
	case errs.IsAccessDenied(err):
		status = fiber.StatusUnauthorized
	case errs.IsNotFound(err):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
}
