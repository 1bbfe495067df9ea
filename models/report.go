package models

import (
	"time"
)

// ActivityReport aggregates consultation and prescription activity
type ActivityReport struct {
	TotalConsultations int               `json:"total_consultations"`
	ConsultationsToday int               `json:"consultations_today"`
	ConsultationsWeek  int               `json:"consultations_week"`
	TotalPrescriptions int               `json:"total_prescriptions"`
	PrescriptionsMonth int               `json:"prescriptions_month"`
	TopMedications     []MedicationCount `json:"top_medications"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// MedicationCount is one entry of the most-prescribed ranking
type MedicationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
