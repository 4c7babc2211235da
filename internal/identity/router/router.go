package router

import (
	"github.com/gofiber/fiber/v2"

	"room_chat_service/internal/identity/app"
)

// RegisterRoutes mount the auth provider REST endpoints
func RegisterRoutes(r *fiber.App, handler *app.IdentityHandler) {
	r.Post("/signup", handler.SignUp)
	r.Post("/signin", handler.SignIn)
	r.Post("/federated", handler.FederatedSignIn)
	r.Post("/signout", handler.SignOut)
	r.Post("/reconnect", handler.Reconnect)
	r.Get("/me", handler.Me)
}
