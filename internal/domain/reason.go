package domain

// MovementReason is a reference/lookup entry. The list is immutable once
// loaded for a kiosk session.
type MovementReason struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultMovementReasons is the hard-coded fallback installed when the server
// returns an empty reason list. The first entry is the pre-selected default.
func DefaultMovementReasons() []MovementReason {
	return []MovementReason{
		{ID: 1, Name: "Repair", Description: "Sent out for repair"},
		{ID: 2, Name: "Maintenance", Description: "Scheduled maintenance"},
		{ID: 3, Name: "Calibration", Description: "Calibration or testing"},
		{ID: 4, Name: "Event Support", Description: "Supporting an off-site event"},
		{ID: 5, Name: "Inter-office Transfer", Description: "Transfer between offices"},
	}
}
