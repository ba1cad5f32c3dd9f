package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fdms-kiosk-backend/internal/domain"
	"fdms-kiosk-backend/internal/logger"
	"fdms-kiosk-backend/internal/remote"
	"fdms-kiosk-backend/internal/session"
)

// Mode is the kiosk workflow state. The error condition is not a mode of its
// own: a failed submission surfaces a message and stays in checkout/return.
type Mode string

const (
	ModeSelection Mode = "selection"
	ModeCheckout  Mode = "checkout"
	ModeReturn    Mode = "return"
	ModeSuccess   Mode = "success"
)

// DefaultSuccessExit is how long the success screen shows before the
// workflow returns to the selection landing state.
const DefaultSuccessExit = 3 * time.Second

// ErrAssetNotFound surfaces when a return targets an id that is no longer in
// the loaded active list, e.g. stale kiosk state after an external removal.
var ErrAssetNotFound = errors.New("Selected asset was not found. Please refresh and try again.")

// ErrOperationInFlight rejects a second mutating call while one is pending.
var ErrOperationInFlight = errors.New("another operation is still in progress")

var errInvalidTransition = errors.New("invalid workflow transition")

// ValidationError is a local, pre-network field-completeness failure. It
// never reaches the network and names every missing field.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Please provide: " + strings.Join(e.Missing, ", ") + "."
}

// CheckoutForm collects the fields required to record equipment leaving the
// site. All fields are required.
type CheckoutForm struct {
	EquipmentName string                `json:"equipmentName"`
	StaffInCharge string                `json:"staffInCharge"`
	BorrowerName  string                `json:"borrowerName"`
	Phone         string                `json:"phone"`
	Email         string                `json:"email"`
	Reason        string                `json:"reason"`
	Status        domain.MovementStatus `json:"status"`
}

// ReturnForm collects the fields required to close out an active movement.
type ReturnForm struct {
	ReturnerName       string                 `json:"returnerName"`
	ReturningStaffName string                 `json:"returningStaffName"`
	ReceiverName       string                 `json:"receiverName"`
	SecurityName       string                 `json:"securityName"`
	ReturnTime         string                 `json:"returnTime"`
	Status             domain.MovementStatus  `json:"status"`
	Condition          domain.ReturnCondition `json:"condition"`
	MaintenanceNotes   string                 `json:"maintenanceNotes"`
}

var checkoutFields = []struct {
	label string
	get   func(*CheckoutForm) string
}{
	{"Equipment Name", func(f *CheckoutForm) string { return f.EquipmentName }},
	{"Staff In Charge", func(f *CheckoutForm) string { return f.StaffInCharge }},
	{"Borrower Name", func(f *CheckoutForm) string { return f.BorrowerName }},
	{"Phone", func(f *CheckoutForm) string { return f.Phone }},
	{"Email", func(f *CheckoutForm) string { return f.Email }},
	{"Reason", func(f *CheckoutForm) string { return f.Reason }},
	{"Status", func(f *CheckoutForm) string { return string(f.Status) }},
}

// Declared label order is fixed; validation messages list missing fields in
// exactly this order.
var returnFields = []struct {
	label string
	get   func(*ReturnForm) string
}{
	{"Returner Name", func(f *ReturnForm) string { return f.ReturnerName }},
	{"Returning Staff Name", func(f *ReturnForm) string { return f.ReturningStaffName }},
	{"Receiver Name", func(f *ReturnForm) string { return f.ReceiverName }},
	{"Security Witness", func(f *ReturnForm) string { return f.SecurityName }},
	{"Return Time", func(f *ReturnForm) string { return f.ReturnTime }},
	{"Status", func(f *ReturnForm) string { return string(f.Status) }},
	{"Condition", func(f *ReturnForm) string { return string(f.Condition) }},
}

// Workflow drives one kiosk station through selection → checkout|return →
// success. It exclusively owns its form state, loaded reference data, and
// confirmation gate; nothing is shared between workflow instances.
type Workflow struct {
	mu sync.Mutex

	mode     Mode
	errMsg   string
	loading  bool
	loaded   bool
	operator string

	records          []domain.AssetMovementRecord
	reasons          []domain.MovementReason
	selectedReasonID int32

	gate        *Gate
	movements   remote.AssetMovementAPI
	reasonsAPI  remote.MovementReasonAPI
	sessions    session.Store
	successExit time.Duration
	exitTimer   *time.Timer
	lastActive  time.Time
	now         func() time.Time
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithSuccessExit overrides the success-screen dwell time.
func WithSuccessExit(d time.Duration) WorkflowOption {
	return func(w *Workflow) { w.successExit = d }
}

func New(movements remote.AssetMovementAPI, reasons remote.MovementReasonAPI, sessions session.Store, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		mode:        ModeSelection,
		gate:        NewGate(),
		movements:   movements,
		reasonsAPI:  reasons,
		sessions:    sessions,
		successExit: DefaultSuccessExit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lastActive = w.now()
	return w
}

// State is a read-only snapshot handed to the kiosk UI.
type State struct {
	Mode             Mode                         `json:"mode"`
	Error            string                       `json:"error,omitempty"`
	Loading          bool                         `json:"loading"`
	Pending          *ConfirmAction               `json:"pending,omitempty"`
	Operator         string                       `json:"operator"`
	Reasons          []domain.MovementReason      `json:"reasons"`
	SelectedReasonID int32                        `json:"selectedReasonId"`
	ActiveAssets     []domain.AssetMovementRecord `json:"activeAssets"`
	ReturnDefaults   ReturnForm                   `json:"returnDefaults"`
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Mode:             w.mode,
		Error:            w.errMsg,
		Loading:          w.loading,
		Pending:          w.gate.Pending(),
		Operator:         w.operator,
		Reasons:          append([]domain.MovementReason(nil), w.reasons...),
		SelectedReasonID: w.selectedReasonID,
		ActiveAssets:     append([]domain.AssetMovementRecord(nil), w.records...),
		ReturnDefaults:   w.returnDefaultsLocked(),
	}
}

// returnDefaultsLocked seeds the security witness field from the resolved
// operator identity.
func (w *Workflow) returnDefaultsLocked() ReturnForm {
	return ReturnForm{
		SecurityName: w.operator,
		ReturnTime:   w.now().Format(time.RFC3339),
		Status:       domain.MovementStatusOnSite,
		Condition:    domain.ReturnConditionGood,
	}
}

// Choose enters checkout or return mode from the selection screen and
// performs the one-time reference data load for this workflow instance.
func (w *Workflow) Choose(ctx context.Context, mode Mode) error {
	w.touch()
	w.mu.Lock()
	if w.mode != ModeSelection || (mode != ModeCheckout && mode != ModeReturn) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", errInvalidTransition, w.mode, mode)
	}
	w.mode = mode
	w.errMsg = ""
	needsLoad := !w.loaded
	w.mu.Unlock()

	if needsLoad {
		w.load(ctx)
	}
	return nil
}

// Back returns to the selection screen, dropping any pending confirmation.
func (w *Workflow) Back() {
	w.touch()
	w.gate.Cancel()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = ModeSelection
	w.errMsg = ""
}

// load fetches the active movement list and the reason catalog once per
// workflow instance, and resolves the operator identity. A failed load
// surfaces inline and is retried on the next mode entry.
func (w *Workflow) load(ctx context.Context) {
	operator := session.ResolveOperator(ctx, w.sessions)

	env, err := w.movements.List(ctx)
	var records []domain.AssetMovementRecord
	if err == nil {
		records, err = remote.Content(env, []domain.AssetMovementRecord{}, "asset movements")
	}
	if err != nil {
		logger.Warn("Asset movement load failed", "error", err)
		w.mu.Lock()
		w.operator = operator
		w.errMsg = remote.ErrorMessage(err, "Failed to load asset movements")
		w.mu.Unlock()
		return
	}

	active := records[:0]
	for _, rec := range records {
		if rec.Status != domain.MovementStatusOnSite {
			active = append(active, rec)
		}
	}

	reasons, err := w.loadReasons(ctx)
	if err != nil {
		logger.Warn("Movement reason load failed", "error", err)
		w.mu.Lock()
		w.operator = operator
		w.errMsg = remote.ErrorMessage(err, "Failed to load movement reasons")
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.operator = operator
	w.records = active
	w.reasons = reasons
	w.selectedReasonID = reasons[0].ID
	w.loaded = true
	w.mu.Unlock()
}

func (w *Workflow) loadReasons(ctx context.Context) ([]domain.MovementReason, error) {
	env, err := w.reasonsAPI.List(ctx)
	if err != nil {
		return nil, err
	}
	reasons, err := remote.Content(env, []domain.MovementReason{}, "movement reasons")
	if err != nil {
		return nil, err
	}
	if len(reasons) == 0 {
		reasons = domain.DefaultMovementReasons()
	}
	return reasons, nil
}

// Search filters the loaded active list by a case-insensitive substring
// match on equipment or borrower name. It never touches the server.
func (w *Workflow) Search(query string) []domain.AssetMovementRecord {
	w.touch()
	w.mu.Lock()
	defer w.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]domain.AssetMovementRecord(nil), w.records...)
	}
	var out []domain.AssetMovementRecord
	for _, rec := range w.records {
		if strings.Contains(strings.ToLower(rec.EquipmentName), q) ||
			strings.Contains(strings.ToLower(rec.BorrowerName), q) {
			out = append(out, rec)
		}
	}
	return out
}

// SubmitCheckout validates the form and arms the confirmation gate. Nothing
// reaches the network until the operator confirms.
func (w *Workflow) SubmitCheckout(form CheckoutForm) error {
	w.touch()
	w.mu.Lock()
	if w.mode != ModeCheckout {
		w.mu.Unlock()
		return fmt.Errorf("%w: checkout submitted in %s mode", errInvalidTransition, w.mode)
	}
	operator := w.operator
	w.mu.Unlock()

	if err := validateCheckout(&form); err != nil {
		w.setError(err.Error())
		return err
	}

	// Provisional client-side id; the server assigns the canonical one and
	// this key is reconciled away on the next fetch.
	record := &domain.AssetMovementRecord{
		ID:            uuid.NewString(),
		EquipmentName: strings.TrimSpace(form.EquipmentName),
		StaffInCharge: strings.TrimSpace(form.StaffInCharge),
		BorrowerName:  strings.TrimSpace(form.BorrowerName),
		Phone:         strings.TrimSpace(form.Phone),
		Email:         strings.TrimSpace(form.Email),
		Reason:        strings.TrimSpace(form.Reason),
		Status:        form.Status,
		CheckoutTime:  w.now().Format(time.RFC3339),
		ProcessedBy:   operator,
	}

	w.gate.Request(
		"Confirm Checkout",
		fmt.Sprintf("Check out %q to %s?", record.EquipmentName, record.BorrowerName),
		func(ctx context.Context) error { return w.commitCheckout(ctx, record) },
	)
	w.setError("")
	return nil
}

// SubmitReturn validates the return fields against the selected asset and
// arms the confirmation gate. Validation runs before the gate so the
// operator never confirms an action already known to be invalid.
func (w *Workflow) SubmitReturn(assetID string, form ReturnForm) error {
	w.touch()
	w.mu.Lock()
	if w.mode != ModeReturn {
		w.mu.Unlock()
		return fmt.Errorf("%w: return submitted in %s mode", errInvalidTransition, w.mode)
	}
	var asset *domain.AssetMovementRecord
	for i := range w.records {
		if w.records[i].ID == assetID {
			asset = &w.records[i]
			break
		}
	}
	operator := w.operator
	w.mu.Unlock()

	if asset == nil {
		w.setError(ErrAssetNotFound.Error())
		return ErrAssetNotFound
	}

	if err := validateReturn(&form); err != nil {
		w.setError(err.Error())
		return err
	}

	ret := &domain.ReturnRecord{
		ReturnerName:       strings.TrimSpace(form.ReturnerName),
		ReturningStaffName: strings.TrimSpace(form.ReturningStaffName),
		ReceiverName:       strings.TrimSpace(form.ReceiverName),
		SecurityName:       strings.TrimSpace(form.SecurityName),
		Condition:          form.Condition,
		MaintenanceNotes:   strings.TrimSpace(form.MaintenanceNotes),
		ReturnTime:         strings.TrimSpace(form.ReturnTime),
		Status:             form.Status,
		ProcessedBy:        operator,
	}

	name := asset.EquipmentName
	id := asset.ID
	w.gate.Request(
		"Confirm Return",
		fmt.Sprintf("Record return of %q from %s?", name, asset.BorrowerName),
		func(ctx context.Context) error { return w.commitReturn(ctx, id, ret) },
	)
	w.setError("")
	return nil
}

// Confirm commits whatever action the gate holds.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.touch()
	return w.gate.Confirm(ctx)
}

// Cancel drops the pending confirmation; the originating mode is unchanged
// and nothing reaches the network.
func (w *Workflow) Cancel() bool {
	w.touch()
	return w.gate.Cancel()
}

func (w *Workflow) commitCheckout(ctx context.Context, record *domain.AssetMovementRecord) error {
	if err := w.beginCall(); err != nil {
		return err
	}
	defer w.endCall()

	env, err := w.movements.Checkout(ctx, record)
	if err == nil {
		err = remote.EnsureSuccess(env, "Checkout failed")
	}
	if err != nil {
		w.setError(remote.ErrorMessage(err, "Checkout failed"))
		return err
	}

	w.mu.Lock()
	w.records = append(w.records, *record)
	w.mu.Unlock()
	w.succeed()
	return nil
}

func (w *Workflow) commitReturn(ctx context.Context, assetID string, ret *domain.ReturnRecord) error {
	if err := w.beginCall(); err != nil {
		return err
	}
	defer w.endCall()

	env, err := w.movements.Return(ctx, assetID, ret)
	if err == nil {
		err = remote.EnsureSuccess(env, "Return failed")
	}
	if err != nil {
		w.setError(remote.ErrorMessage(err, "Return failed"))
		return err
	}

	// The server persists the return; the active list just assumes removal
	// rather than mutating the record.
	w.mu.Lock()
	kept := w.records[:0]
	for _, rec := range w.records {
		if rec.ID != assetID {
			kept = append(kept, rec)
		}
	}
	w.records = kept
	w.mu.Unlock()
	w.succeed()
	return nil
}

// beginCall enforces one in-flight mutating call per workflow instance.
func (w *Workflow) beginCall() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrOperationInFlight
	}
	w.loading = true
	return nil
}

func (w *Workflow) endCall() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
}

func (w *Workflow) succeed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = ModeSuccess
	w.errMsg = ""
	if w.exitTimer != nil {
		w.exitTimer.Stop()
	}
	w.exitTimer = time.AfterFunc(w.successExit, w.exitSuccess)
}

// exitSuccess leaves the success screen for the selection landing state
// after the fixed dwell time.
func (w *Workflow) exitSuccess() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mode == ModeSuccess {
		w.mode = ModeSelection
	}
}

func (w *Workflow) setError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errMsg = msg
}

func (w *Workflow) touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActive = w.now()
}

// LastActive is used by the session manager's idle sweep.
func (w *Workflow) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

func validateCheckout(form *CheckoutForm) error {
	var missing []string
	for _, f := range checkoutFields {
		if strings.TrimSpace(f.get(form)) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func validateReturn(form *ReturnForm) error {
	var missing []string
	for _, f := range returnFields {
		if strings.TrimSpace(f.get(form)) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
