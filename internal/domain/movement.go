package domain

type MovementStatus string

// Suggested statuses. The status field is an open set: kiosks may submit
// free text in addition to these.
const (
	MovementStatusOffSite   MovementStatus = "Off-site"
	MovementStatusInTransit MovementStatus = "In-transit"
	MovementStatusOnSite    MovementStatus = "On-site"
)

type ReturnCondition string

const (
	ReturnConditionGood         ReturnCondition = "Good"
	ReturnConditionDamaged      ReturnCondition = "Damaged"
	ReturnConditionNeedsService ReturnCondition = "Needs Service"
)

// AssetMovementRecord is one active piece of equipment that has left the
// site. All fields up to CheckoutTime are immutable after creation; a record
// leaves the active set when a return is recorded against its ID.
type AssetMovementRecord struct {
	ID            string         `json:"id"`
	EquipmentName string         `json:"equipmentName"`
	StaffInCharge string         `json:"staffInCharge"`
	BorrowerName  string         `json:"borrowerName"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	Reason        string         `json:"reason"`
	Status        MovementStatus `json:"status"`
	CheckoutTime  string         `json:"checkoutTime"`
	ProcessedBy   string         `json:"processedBy"`
}

// ReturnRecord closes out an active movement, associated 1:1 with an
// AssetMovementRecord by ID on the server side.
type ReturnRecord struct {
	ReturnerName       string          `json:"returnerName"`
	ReturningStaffName string          `json:"returningStaffName"`
	ReceiverName       string          `json:"receiverName"`
	SecurityName       string          `json:"securityName"`
	Condition          ReturnCondition `json:"condition"`
	MaintenanceNotes   string          `json:"maintenanceNotes,omitempty"`
	ReturnTime         string          `json:"returnTime"`
	Status             MovementStatus  `json:"status"`
	ProcessedBy        string          `json:"processedBy"`
}
