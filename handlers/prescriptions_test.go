package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdomhospital/hospital-api/models"
	"github.com/kingdomhospital/hospital-api/validation"
)

func attachErrorStatus(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondAttachError(c, "F72", err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, reqErr)
	return resp.StatusCode
}

func TestAttachErrorMissingConsultationIsNotFound(t *testing.T) {
	status := attachErrorStatus(t, &validation.Error{
		Kind:    validation.KindInvalidReference,
		Field:   "consultation_id",
		Message: "consultation with id 9 does not exist",
	})
	assert.Equal(t, 404, status)
}

func TestAttachErrorKeepsRegularMappingOtherwise(t *testing.T) {
	assert.Equal(t, 400, attachErrorStatus(t, &validation.Error{
		Kind:    validation.KindInvalidReference,
		Field:   "doctor_id",
		Message: "doctor with id 9 does not exist",
	}))
	assert.Equal(t, 400, attachErrorStatus(t, &validation.Error{
		Kind:    validation.KindInconsistentState,
		Message: "the prescription's doctor must match the consultation's doctor",
	}))
}

func TestLineBatchPayloadDecodes(t *testing.T) {
	payload := `[{"medication_id":1,"dosage":"500mg","frequency":"3x daily","duration":"5 days","quantity":15},
		{"medication_id":2,"dosage":"10mg","frequency":"once daily","duration":"7 days","quantity":7,"instructions":"at night"}]`

	var reqs []models.PrescriptionLineRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &reqs))
	require.Len(t, reqs, 2)
	assert.Equal(t, 2, reqs[1].MedicationID)
	require.NotNil(t, reqs[1].Instructions)
	assert.Equal(t, "at night", *reqs[1].Instructions)
}
