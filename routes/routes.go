package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kingdomhospital/hospital-api/handlers"
	"github.com/kingdomhospital/hospital-api/middleware"
)

// SetupRoutes wires every route of the application. Reads are open,
// writes and the admin surface sit behind the JWT middleware.
func SetupRoutes(app *fiber.App) {
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.DefaultRateLimiter())
	app.Use(middleware.LoggingMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Hospital Records API",
			"version": "1.0.0",
		})
	})

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), handlers.Login)

	protected := middleware.JWTMiddleware()

	specialties := api.Group("/specialties")
	specialties.Get("/", handlers.GetSpecialties)
	specialties.Get("/:id", handlers.GetSpecialtyByID)
	specialties.Get("/:id/doctors", handlers.GetDoctorsBySpecialty)

	doctors := api.Group("/doctors")
	doctors.Get("/", handlers.GetDoctors)
	doctors.Post("/", protected, handlers.CreateDoctor)
	doctors.Get("/:id", handlers.GetDoctorByID)
	doctors.Put("/:id", protected, handlers.UpdateDoctor)
	doctors.Get("/:id/specialty", handlers.GetDoctorSpecialty)
	doctors.Put("/:id/specialty/:specialtyId", protected, handlers.ReassignDoctorSpecialty)
	doctors.Get("/:id/consultations", handlers.GetDoctorConsultations)
	doctors.Get("/:id/patients", handlers.GetDoctorPatients)
	doctors.Get("/:id/prescriptions", handlers.GetDoctorPrescriptions)

	patients := api.Group("/patients")
	patients.Get("/", handlers.GetPatients)
	patients.Post("/", protected, handlers.CreatePatient)
	patients.Get("/:id", handlers.GetPatientByID)
	patients.Put("/:id", protected, handlers.UpdatePatient)
	patients.Delete("/:id", protected, handlers.DeletePatient)
	patients.Get("/:id/consultations", handlers.GetPatientConsultations)
	patients.Get("/:id/prescriptions", handlers.GetPatientPrescriptions)

	medications := api.Group("/medications")
	medications.Get("/", handlers.GetMedications)
	medications.Post("/", protected, handlers.CreateMedication)
	medications.Get("/:id", handlers.GetMedicationByID)
	medications.Get("/:id/prescriptions", handlers.GetMedicationPrescriptions)

	consultations := api.Group("/consultations")
	consultations.Get("/", handlers.GetConsultations)
	consultations.Post("/", protected, handlers.CreateConsultation)
	consultations.Get("/:id", handlers.GetConsultationByID)
	consultations.Put("/:id", protected, handlers.UpdateConsultation)
	consultations.Delete("/:id", protected, handlers.DeleteConsultation)
	consultations.Get("/:id/prescriptions", handlers.GetConsultationPrescriptions)
	consultations.Post("/:id/prescriptions", protected, handlers.CreateConsultationPrescription)

	prescriptions := api.Group("/prescriptions")
	prescriptions.Get("/", handlers.GetPrescriptions)
	prescriptions.Post("/", protected, handlers.CreatePrescription)
	prescriptions.Get("/:id", handlers.GetPrescriptionByID)
	prescriptions.Put("/:id", protected, handlers.UpdatePrescription)
	prescriptions.Delete("/:id", protected, handlers.DeletePrescription)
	prescriptions.Put("/:id/consultation/:consultationId", protected, handlers.AttachConsultation)
	prescriptions.Delete("/:id/consultation", protected, handlers.DetachConsultation)
	prescriptions.Get("/:id/lines", handlers.GetPrescriptionLines)
	prescriptions.Post("/:id/lines", protected, handlers.AddPrescriptionLines)
	prescriptions.Get("/:id/lines/:lineId", handlers.GetPrescriptionLine)
	prescriptions.Put("/:id/lines/:lineId", protected, handlers.UpdatePrescriptionLine)
	prescriptions.Delete("/:id/lines/:lineId", protected, handlers.DeletePrescriptionLine)

	reports := api.Group("/reports", protected)
	reports.Get("/activity", handlers.GetActivityReport)

	logs := api.Group("/logs", protected)
	logs.Get("/", handlers.GetLogs)
	logs.Get("/stats", handlers.GetLogStats)
}
