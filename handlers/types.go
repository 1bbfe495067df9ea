package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/validation"
)

// rules is the shared business-rule validator, reading through the pgx-backed
// lookups. Stateless, safe for concurrent requests.
var rules = validation.New(database.NewLookups())

type BodyResponse struct {
	IntCode string        `json:"intCode"`
	Data    []interface{} `json:"data"`
}

type StandardResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       BodyResponse `json:"body"`
}

func respond(c *fiber.Ctx, status int, intCode string, data fiber.Map) error {
	return c.Status(status).JSON(StandardResponse{
		StatusCode: status,
		Body: BodyResponse{
			IntCode: intCode,
			Data:    []interface{}{data},
		},
	})
}

func respondError(c *fiber.Ctx, status int, intCode string, message string) error {
	return respond(c, status, intCode, fiber.Map{"error": message})
}

// respondRuleError translates a validator rejection into the transport shape:
// NotFound is 404, Conflict is 409, every other rule violation is 400.
// Anything that is not a validation.Error is a store failure.
func respondRuleError(c *fiber.Ctx, intCode string, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		status := 400
		switch verr.Kind {
		case validation.KindNotFound:
			status = 404
		case validation.KindConflict:
			status = 409
		}
		return respondError(c, status, intCode, verr.Message)
	}
	return respondError(c, 500, intCode, "Internal error while validating the request")
}

// isUniqueViolation reports whether the store rejected a write on a unique
// constraint. The consultation slot constraint uses this to turn the race
// loser's error into a conflict instead of a 500.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// parseDate parses a YYYY-MM-DD payload field
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseHour validates an HH:MM payload field and returns it unchanged
func parseHour(s string) (string, error) {
	if _, err := time.Parse("15:04", s); err != nil {
		return "", err
	}
	return s, nil
}
