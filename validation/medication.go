package validation

// MedicationCandidate is a medication about to be written
type MedicationCandidate struct {
	Name       string
	DosageForm string
	Strength   string
	AtcCode    *string
}

// Medication validates a candidate and returns it normalized. The ATC code is
// optional; blank collapses to absent.
func (v *Validator) Medication(cand MedicationCandidate) (MedicationCandidate, error) {
	if isBlank(cand.Name) {
		return cand, blankField("name", "the medication name cannot be empty")
	}
	if isBlank(cand.DosageForm) {
		return cand, blankField("dosage_form", "the dosage form cannot be empty")
	}
	if isBlank(cand.Strength) {
		return cand, blankField("strength", "the strength cannot be empty")
	}

	cand.Name = trim(cand.Name)
	cand.DosageForm = trim(cand.DosageForm)
	cand.Strength = trim(cand.Strength)
	cand.AtcCode = normalizeOptional(cand.AtcCode)

	return cand, nil
}
