// @title           Messaging API
// @version         1.0
// @description     Authenticated messaging backend: registration with email verification, JWT sessions and direct messages.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "messaging_backend/docs"
	"messaging_backend/internal/app"
)

func main() {
	app.Run()
}
