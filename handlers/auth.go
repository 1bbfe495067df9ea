package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kingdomhospital/hospital-api/middleware"
	"github.com/kingdomhospital/hospital-api/models"
)

// Login checks the staff credential against ADMIN_EMAIL and
// ADMIN_PASSWORD_HASH and issues an access token for mutating endpoints
func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "F01", "Invalid payload")
	}

	if req.Email == "" || req.Password == "" {
		return respondError(c, 400, "F01", "Email and password are required")
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminEmail == "" || adminHash == "" {
		return respondError(c, 500, "F01", "Authentication is not configured")
	}

	if req.Email != adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(req.Password)) != nil {
		return respondError(c, 401, "F01", "Invalid credentials")
	}

	token, err := middleware.GenerateJWT(req.Email, "admin")
	if err != nil {
		return respondError(c, 500, "F01", "Error generating the token")
	}

	middleware.LogEvent(models.LogLevelSuccess, "Staff login", req.Email, map[string]interface{}{
		"action": "login",
	})

	return respond(c, 200, "S01", fiber.Map{
		"login": models.LoginResponse{
			AccessToken: token,
			ExpiresIn:   int(middleware.TokenTTL.Seconds()),
		},
	})
}
