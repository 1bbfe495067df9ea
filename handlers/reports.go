package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/models"
)

// GetActivityReport aggregates consultation and prescription activity. Each
// counter is best effort, a failed count reads as zero instead of failing the
// whole report.
func GetActivityReport(c *fiber.Ctx) error {
	ctx := context.Background()

	var report models.ActivityReport
	report.GeneratedAt = time.Now()

	err := database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM consultation").Scan(&report.TotalConsultations)
	if err != nil {
		report.TotalConsultations = 0
	}

	today := time.Now().Format("2006-01-02")
	err = database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM consultation WHERE date = $1", today).
		Scan(&report.ConsultationsToday)
	if err != nil {
		report.ConsultationsToday = 0
	}

	weekStart := time.Now().AddDate(0, 0, -int(time.Now().Weekday())).Format("2006-01-02")
	err = database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM consultation WHERE date >= $1", weekStart).
		Scan(&report.ConsultationsWeek)
	if err != nil {
		report.ConsultationsWeek = 0
	}

	err = database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM prescription").Scan(&report.TotalPrescriptions)
	if err != nil {
		report.TotalPrescriptions = 0
	}

	monthStart := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	err = database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM prescription WHERE date >= $1", monthStart).
		Scan(&report.PrescriptionsMonth)
	if err != nil {
		report.PrescriptionsMonth = 0
	}

	rows, err := database.GetDB().Query(ctx,
		`SELECT m.name, COUNT(*) AS uses
		 FROM prescription_line pl
		 JOIN medication m ON m.id_medication = pl.id_medication
		 GROUP BY m.name ORDER BY uses DESC, m.name LIMIT 5`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var mc models.MedicationCount
			if err := rows.Scan(&mc.Name, &mc.Count); err != nil {
				continue
			}
			report.TopMedications = append(report.TopMedications, mc)
		}
	}

	return respond(c, 200, "S91", fiber.Map{"report": report, "message": "Report generated successfully"})
}
