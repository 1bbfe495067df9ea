package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdomhospital/hospital-api/validation"
)

func ruleErrorStatus(t *testing.T, err error) (int, StandardResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondRuleError(c, "F00", err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, reqErr)

	var body StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRespondRuleErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &validation.Error{Kind: validation.KindNotFound, Message: "missing"}, 404},
		{"conflict", &validation.Error{Kind: validation.KindConflict, Message: "slot taken"}, 409},
		{"invalid reference", &validation.Error{Kind: validation.KindInvalidReference, Message: "no such doctor"}, 400},
		{"out of range", &validation.Error{Kind: validation.KindOutOfRange, Message: "too far"}, 400},
		{"inconsistent", &validation.Error{Kind: validation.KindInconsistentState, Message: "mismatch"}, 400},
		{"blank field", &validation.Error{Kind: validation.KindBlankField, Message: "empty"}, 400},
		{"store failure", errors.New("connection refused"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ruleErrorStatus(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.status, body.StatusCode)
			assert.Equal(t, "F00", body.Body.IntCode)
			require.Len(t, body.Body.Data, 1)
		})
	}
}

func TestRespondEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respond(c, 201, "S00", fiber.Map{"id": 7})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var body StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 201, body.StatusCode)
	assert.Equal(t, "S00", body.Body.IntCode)
	require.Len(t, body.Body.Data, 1)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("not a pg error")))
	assert.False(t, isUniqueViolation(nil))
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = parseDate("15/06/2024")
	assert.Error(t, err)
	_, err = parseDate("2024-13-01")
	assert.Error(t, err)
}

func TestParseHour(t *testing.T) {
	h, err := parseHour("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", h)

	_, err = parseHour("9h30")
	assert.Error(t, err)
	_, err = parseHour("25:00")
	assert.Error(t, err)
}
