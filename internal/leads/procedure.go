package leads

import "strings"

// ProcedureID is the closed set of dental-implant procedure categories a lead
// can be interested in.
type ProcedureID string

const (
	ProcedureSingleTooth     ProcedureID = "single-tooth"
	ProcedureAllOn4          ProcedureID = "all-on-4"
	ProcedureImplantDentures ProcedureID = "implant-dentures"
	ProcedureSameDay         ProcedureID = "same-day"
	ProcedureBoneGraft       ProcedureID = "bone-graft"
	ProcedureFullMouth       ProcedureID = "full-mouth"
	ProcedureNotSure         ProcedureID = "not-sure"
)

var procedureOrder = []ProcedureID{
	ProcedureSingleTooth,
	ProcedureAllOn4,
	ProcedureImplantDentures,
	ProcedureSameDay,
	ProcedureBoneGraft,
	ProcedureFullMouth,
	ProcedureNotSure,
}

// Procedures returns every procedure id in display order.
func Procedures() []ProcedureID {
	out := make([]ProcedureID, len(procedureOrder))
	copy(out, procedureOrder)
	return out
}

// ParseProcedure accepts an exact procedure id (case and surrounding space
// insensitive). Anything else is rejected.
func ParseProcedure(raw string) (ProcedureID, bool) {
	id := ProcedureID(strings.ToLower(strings.TrimSpace(raw)))
	if id.Valid() {
		return id, true
	}
	return "", false
}

// Valid reports whether p is one of the known procedure ids.
func (p ProcedureID) Valid() bool {
	switch p {
	case ProcedureSingleTooth, ProcedureAllOn4, ProcedureImplantDentures, ProcedureSameDay,
		ProcedureBoneGraft, ProcedureFullMouth, ProcedureNotSure:
		return true
	default:
		return false
	}
}

// Label is the conversational phrase used when confirming the procedure back
// to the patient ("Got it, All-on-4 implants.").
func (p ProcedureID) Label() string {
	switch p {
	case ProcedureSingleTooth:
		return "a single tooth implant"
	case ProcedureAllOn4:
		return "All-on-4 implants"
	case ProcedureImplantDentures:
		return "snap-in dentures"
	case ProcedureSameDay:
		return "same-day implants"
	case ProcedureBoneGraft:
		return "bone grafting"
	case ProcedureFullMouth:
		return "full mouth reconstruction"
	case ProcedureNotSure:
		return "a free implant consultation"
	default:
		return "dental implants"
	}
}

// Name is the catalog-style title of the procedure.
func (p ProcedureID) Name() string {
	switch p {
	case ProcedureSingleTooth:
		return "Single Tooth Implant"
	case ProcedureAllOn4:
		return "All-on-4 Implants"
	case ProcedureImplantDentures:
		return "Implant-Supported Dentures"
	case ProcedureSameDay:
		return "Same-Day Implants"
	case ProcedureBoneGraft:
		return "Bone Grafting"
	case ProcedureFullMouth:
		return "Full Mouth Reconstruction"
	case ProcedureNotSure:
		return "Free Consultation"
	default:
		return ""
	}
}

// MatchTerm is the lowercase first word of the procedure name. Provider
// catalogs spell procedures freely ("All-on-4 Dental Implants", "All on 4"),
// so matching on the leading word tolerates that variance. Returns "" when the
// procedure carries no matching signal.
func (p ProcedureID) MatchTerm() string {
	if !p.Valid() || p == ProcedureNotSure {
		return ""
	}
	fields := strings.FieldsFunc(p.Name(), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
