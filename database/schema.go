package database

import (
	"context"
	"log"
	"time"
)

// Table definitions. The slot uniqueness on consultation backs the validator's
// conflict check so concurrent writers cannot both win the same slot.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS specialty (
		id_specialty SERIAL PRIMARY KEY,
		name VARCHAR(30) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS doctor (
		id_doctor SERIAL PRIMARY KEY,
		id_specialty INT NOT NULL REFERENCES specialty(id_specialty) ON DELETE RESTRICT,
		last_name VARCHAR(30) NOT NULL,
		first_name VARCHAR(30) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS patient (
		id_patient SERIAL PRIMARY KEY,
		last_name VARCHAR(30) NOT NULL,
		first_name VARCHAR(30) NOT NULL,
		birth_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS consultation (
		id_consultation SERIAL PRIMARY KEY,
		id_doctor INT NOT NULL REFERENCES doctor(id_doctor) ON DELETE RESTRICT,
		id_patient INT NOT NULL REFERENCES patient(id_patient) ON DELETE RESTRICT,
		date DATE NOT NULL,
		hour TIME NOT NULL,
		reason VARCHAR(100),
		CONSTRAINT uq_consultation_slot UNIQUE (id_doctor, date, hour)
	)`,
	`CREATE TABLE IF NOT EXISTS medication (
		id_medication SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		dosage_form VARCHAR(30) NOT NULL,
		strength VARCHAR(30) NOT NULL,
		atc_code VARCHAR(20)
	)`,
	`CREATE TABLE IF NOT EXISTS prescription (
		id_prescription SERIAL PRIMARY KEY,
		id_doctor INT NOT NULL REFERENCES doctor(id_doctor) ON DELETE RESTRICT,
		id_patient INT NOT NULL REFERENCES patient(id_patient) ON DELETE RESTRICT,
		id_consultation INT REFERENCES consultation(id_consultation) ON DELETE SET NULL,
		date DATE NOT NULL,
		notes VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS prescription_line (
		id_line SERIAL PRIMARY KEY,
		id_prescription INT NOT NULL REFERENCES prescription(id_prescription) ON DELETE CASCADE,
		id_medication INT NOT NULL REFERENCES medication(id_medication) ON DELETE RESTRICT,
		dosage VARCHAR(50) NOT NULL,
		frequency VARCHAR(50) NOT NULL,
		duration VARCHAR(30) NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		instructions VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS request_log (
		id_log SERIAL PRIMARY KEY,
		method VARCHAR(10) NOT NULL,
		path VARCHAR(500) NOT NULL,
		status_code INT NOT NULL,
		response_time INT,
		user_agent TEXT,
		ip VARCHAR(45) NOT NULL,
		body TEXT,
		query TEXT,
		subject VARCHAR(100),
		log_level VARCHAR(10) NOT NULL,
		environment VARCHAR(20) NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range migrations {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			log.Fatalf("Error applying migration: %v", err)
		}
	}
	log.Println("Schema up to date")
}

// Seed loads the demo dataset into an empty store. A store that already holds
// specialties is left untouched.
func Seed() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var count int
	if err := DB.QueryRow(ctx, "SELECT COUNT(*) FROM specialty").Scan(&count); err != nil {
		log.Printf("Seed skipped, cannot inspect specialty table: %v", err)
		return
	}
	if count > 0 {
		return
	}

	specialties := []string{"Cardiologie", "Dermatologie", "Neurologie", "Pédiatrie", "Orthopédie", "Médecine générale"}
	for _, name := range specialties {
		if _, err := DB.Exec(ctx, "INSERT INTO specialty (name) VALUES ($1)", name); err != nil {
			log.Printf("Seed error (specialty %s): %v", name, err)
			return
		}
	}

	doctors := []struct {
		specialty int
		last      string
		first     string
	}{
		{1, "Moreau", "Claire"},
		{2, "Lefevre", "Antoine"},
		{3, "Dubois", "Nadia"},
		{4, "Bernard", "Julien"},
		{5, "Petit", "Sophie"},
		{6, "Garnier", "Luc"},
	}
	for _, d := range doctors {
		if _, err := DB.Exec(ctx,
			"INSERT INTO doctor (id_specialty, last_name, first_name) VALUES ($1, $2, $3)",
			d.specialty, d.last, d.first); err != nil {
			log.Printf("Seed error (doctor %s): %v", d.last, err)
			return
		}
	}

	patients := []struct {
		last  string
		first string
		birth string
	}{
		{"Martin", "Paul", "1964-03-12"},
		{"Rousseau", "Emma", "1988-11-02"},
		{"Fontaine", "Hugo", "2015-06-25"},
		{"Caron", "Alice", "1979-01-30"},
		{"Marchand", "Louis", "1952-09-17"},
	}
	for _, p := range patients {
		if _, err := DB.Exec(ctx,
			"INSERT INTO patient (last_name, first_name, birth_date) VALUES ($1, $2, $3)",
			p.last, p.first, p.birth); err != nil {
			log.Printf("Seed error (patient %s): %v", p.last, err)
			return
		}
	}

	medications := []struct {
		name     string
		form     string
		strength string
		atc      *string
	}{
		{"Paracétamol", "Comprimé", "500mg", ptr("N02BE01")},
		{"Amoxicilline", "Gélule", "500mg", ptr("J01CA04")},
		{"Ibuprofène", "Comprimé", "200mg", ptr("M01AE01")},
		{"Loratadine", "Comprimé", "10mg", ptr("R06AX13")},
		{"Oméprazole", "Gélule", "20mg", ptr("A02BC01")},
		{"Salbutamol", "Aérosol", "100µg", nil},
	}
	for _, m := range medications {
		if _, err := DB.Exec(ctx,
			"INSERT INTO medication (name, dosage_form, strength, atc_code) VALUES ($1, $2, $3, $4)",
			m.name, m.form, m.strength, m.atc); err != nil {
			log.Printf("Seed error (medication %s): %v", m.name, err)
			return
		}
	}

	day := func(offset int) string {
		return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
	}
	consultations := []struct {
		doctor  int
		patient int
		date    string
		hour    string
		reason  string
	}{
		{1, 1, day(-10), "09:00", "Contrôle cardiaque"},
		{2, 1, day(-5), "14:30", "Examen de la peau"},
		{3, 2, day(-15), "10:00", "Maux de tête"},
		{4, 3, day(-8), "11:00", "Consultation pédiatrique"},
		{1, 2, day(-3), "15:00", "Bilan cardiaque"},
		{5, 4, day(-12), "09:30", "Douleur au genou"},
		{6, 5, day(-7), "16:00", "Consultation de suivi"},
	}
	for _, c := range consultations {
		if _, err := DB.Exec(ctx,
			"INSERT INTO consultation (id_doctor, id_patient, date, hour, reason) VALUES ($1, $2, $3, $4, $5)",
			c.doctor, c.patient, c.date, c.hour, c.reason); err != nil {
			log.Printf("Seed error (consultation): %v", err)
			return
		}
	}

	prescriptions := []struct {
		doctor       int
		patient      int
		consultation *int
		date         string
		notes        *string
		lines        []seedLine
	}{
		{1, 1, ptr(1), day(-10), ptr("Revoir dans un mois"), []seedLine{
			{1, "500mg", "3 fois par jour", "5 jours", 15, ptr("Pendant les repas")},
			{3, "200mg", "2 fois par jour", "3 jours", 6, nil},
		}},
		{3, 2, ptr(3), day(-14), nil, []seedLine{
			{1, "1000mg", "2 fois par jour", "7 jours", 14, nil},
		}},
		{6, 5, nil, day(-6), ptr("Renouvellement"), []seedLine{
			{5, "20mg", "1 fois par jour", "30 jours", 30, ptr("Le matin à jeun")},
		}},
	}
	for _, p := range prescriptions {
		var id int
		if err := DB.QueryRow(ctx,
			`INSERT INTO prescription (id_doctor, id_patient, id_consultation, date, notes)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id_prescription`,
			p.doctor, p.patient, p.consultation, p.date, p.notes).Scan(&id); err != nil {
			log.Printf("Seed error (prescription): %v", err)
			return
		}
		for _, l := range p.lines {
			if _, err := DB.Exec(ctx,
				`INSERT INTO prescription_line (id_prescription, id_medication, dosage, frequency, duration, quantity, instructions)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, l.medication, l.dosage, l.frequency, l.duration, l.quantity, l.instructions); err != nil {
				log.Printf("Seed error (prescription line): %v", err)
				return
			}
		}
	}

	log.Printf("Seeded %d specialties, %d doctors, %d patients, %d medications, %d consultations, %d prescriptions",
		len(specialties), len(doctors), len(patients), len(medications), len(consultations), len(prescriptions))
}

type seedLine struct {
	medication   int
	dosage       string
	frequency    string
	duration     string
	quantity     int
	instructions *string
}

func ptr[T any](v T) *T {
	return &v
}
