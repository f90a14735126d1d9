package models

// BloodType is one of the eight canonical ABO/Rh groups.
type BloodType string

const (
	APos  BloodType = "A+"
	ANeg  BloodType = "A-"
	BPos  BloodType = "B+"
	BNeg  BloodType = "B-"
	ABPos BloodType = "AB+"
	ABNeg BloodType = "AB-"
	OPos  BloodType = "O+"
	ONeg  BloodType = "O-"
)

// BloodTypes lists the canonical groups in display order.
var BloodTypes = []BloodType{APos, ANeg, BPos, BNeg, OPos, ONeg, ABPos, ABNeg}

// compatibleDonors maps a recipient group to the donor groups that can serve it.
var compatibleDonors = map[BloodType][]BloodType{
	APos:  {APos, ANeg, OPos, ONeg},
	ANeg:  {ANeg, ONeg},
	BPos:  {BPos, BNeg, OPos, ONeg},
	BNeg:  {BNeg, ONeg},
	ABPos: {APos, ANeg, BPos, BNeg, OPos, ONeg, ABPos, ABNeg},
	ABNeg: {ANeg, BNeg, ONeg, ABNeg},
	OPos:  {OPos, ONeg},
	ONeg:  {ONeg},
}

// Valid reports whether t is one of the canonical groups.
func (t BloodType) Valid() bool {
	_, ok := compatibleDonors[t]
	return ok
}

// CompatibleDonorTypes returns the donor groups allowed to give to recipient.
// An unknown recipient type only matches itself.
func CompatibleDonorTypes(recipient BloodType) []BloodType {
	donors, ok := compatibleDonors[recipient]
	if !ok {
		return []BloodType{recipient}
	}
	out := make([]BloodType, len(donors))
	copy(out, donors)
	return out
}

// CanDonateTo reports whether a donor of group donor may give to recipient.
func CanDonateTo(donor, recipient BloodType) bool {
	for _, t := range CompatibleDonorTypes(recipient) {
		if t == donor {
			return true
		}
	}
	return false
}

// BloodTypeStrings converts groups to plain strings for store queries.
func BloodTypeStrings(types []BloodType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
