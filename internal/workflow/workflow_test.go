package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fdms-kiosk-backend/internal/domain"
	"fdms-kiosk-backend/internal/remote"
	"fdms-kiosk-backend/internal/session"
)

func env(t *testing.T, body string) *remote.Envelope {
	t.Helper()
	e, err := remote.ParseEnvelope([]byte(body))
	require.NoError(t, err)
	return e
}

const activeListBody = `{
	"isSuccess": true,
	"content": [
		{"id": "m-1", "equipmentName": "Projector", "borrowerName": "Ada Lovelace", "status": "Off-site"},
		{"id": "m-2", "equipmentName": "Generator", "borrowerName": "Grace Hopper", "status": "In-transit"},
		{"id": "m-3", "equipmentName": "Laptop", "borrowerName": "Alan Turing", "status": "On-site"}
	]
}`

func validCheckout() CheckoutForm {
	return CheckoutForm{
		EquipmentName: "Projector",
		StaffInCharge: "Sam Chan",
		BorrowerName:  "Ada Lovelace",
		Phone:         "555-0100",
		Email:         "ada@example.com",
		Reason:        "Repair",
		Status:        domain.MovementStatusOffSite,
	}
}

func validReturn() ReturnForm {
	return ReturnForm{
		ReturnerName:       "Ada Lovelace",
		ReturningStaffName: "Sam Chan",
		ReceiverName:       "Robin Singh",
		SecurityName:       "Kim Officer",
		ReturnTime:         "2026-08-28T10:00:00Z",
		Status:             domain.MovementStatusOnSite,
		Condition:          domain.ReturnConditionGood,
	}
}

func newTestWorkflow(t *testing.T, movements *MockMovementAPI, reasons *MockReasonAPI) (*Workflow, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), session.KeyAdminSessionName, "Jane Doe"))
	w := New(movements, reasons, store, WithSuccessExit(20*time.Millisecond))
	return w, store
}

func TestWorkflow_LoadOnModeEntry(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil).Once()
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil).Once()

	require.NoError(t, w.Choose(context.Background(), ModeReturn))

	st := w.State()
	assert.Equal(t, ModeReturn, st.Mode)
	assert.Empty(t, st.Error)

	// On-site records are filtered out of the active set.
	require.Len(t, st.ActiveAssets, 2)
	assert.Equal(t, "m-1", st.ActiveAssets[0].ID)

	// Empty reason list installs the five defaults with the first selected.
	require.Len(t, st.Reasons, 5)
	assert.Equal(t, "Repair", st.Reasons[0].Name)
	assert.Equal(t, st.Reasons[0].ID, st.SelectedReasonID)

	// Operator identity seeds the return form's security witness.
	assert.Equal(t, "Jane Doe", st.Operator)
	assert.Equal(t, "Jane Doe", st.ReturnDefaults.SecurityName)

	// The load is once per session: going back and re-entering does not
	// re-fetch.
	w.Back()
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))
	movements.AssertNumberOfCalls(t, "List", 1)
	reasons.AssertNumberOfCalls(t, "List", 1)
}

func TestWorkflow_ChooseRejectsInvalidTransitions(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	assert.Error(t, w.Choose(context.Background(), ModeSuccess))

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))

	// Already in checkout; choosing again is invalid.
	assert.Error(t, w.Choose(context.Background(), ModeReturn))
}

func TestWorkflow_Search(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeReturn))

	// Case-insensitive match on equipment name.
	got := w.Search("PROJ")
	require.Len(t, got, 1)
	assert.Equal(t, "m-1", got[0].ID)

	// Match on borrower name.
	got = w.Search("grace")
	require.Len(t, got, 1)
	assert.Equal(t, "m-2", got[0].ID)

	// Blank query returns the full active list.
	assert.Len(t, w.Search("  "), 2)
	assert.Empty(t, w.Search("zzz"))
}

func TestWorkflow_CheckoutHappyPath(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))

	require.NoError(t, w.SubmitCheckout(validCheckout()))

	// Nothing reaches the network before confirmation.
	movements.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	pending := w.State().Pending
	require.NotNil(t, pending)
	assert.Equal(t, "Confirm Checkout", pending.Title)

	movements.On("Checkout", mock.Anything, mock.AnythingOfType("*domain.AssetMovementRecord")).
		Return(env(t, `{"isSuccess": true}`), nil).Once()

	require.NoError(t, w.Confirm(context.Background()))

	st := w.State()
	assert.Equal(t, ModeSuccess, st.Mode)
	assert.Empty(t, st.Error)
	assert.Len(t, st.ActiveAssets, 3)

	// The record carries a provisional id, a checkout time, and the
	// operator attribution.
	record := movements.Calls[len(movements.Calls)-1].Arguments.Get(1).(*domain.AssetMovementRecord)
	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.CheckoutTime)
	assert.Equal(t, "Jane Doe", record.ProcessedBy)

	// The success screen auto-exits to selection after the dwell time.
	assert.Eventually(t, func() bool {
		return w.State().Mode == ModeSelection
	}, time.Second, 5*time.Millisecond)
}

func TestWorkflow_CheckoutValidation(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))

	form := validCheckout()
	form.Phone = "   "
	form.Email = ""

	err := w.SubmitCheckout(form)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"Phone", "Email"}, valErr.Missing)
	assert.Nil(t, w.State().Pending)
}

func TestWorkflow_CheckoutRemoteFailure(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))
	require.NoError(t, w.SubmitCheckout(validCheckout()))

	movements.On("Checkout", mock.Anything, mock.Anything).
		Return(env(t, `{"hasError": true, "message": "Equipment already signed out"}`), nil).Once()

	err := w.Confirm(context.Background())
	require.Error(t, err)

	// Failure keeps the operator in checkout with the message inline.
	st := w.State()
	assert.Equal(t, ModeCheckout, st.Mode)
	assert.Equal(t, "Equipment already signed out", st.Error)
	assert.False(t, st.Loading)
	assert.Len(t, st.ActiveAssets, 2)
}

func TestWorkflow_SingleInFlightCommit(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))

	started := make(chan struct{})
	release := make(chan struct{})
	movements.On("Checkout", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(env(t, `{"isSuccess": true}`), nil).Once()

	require.NoError(t, w.SubmitCheckout(validCheckout()))
	firstDone := make(chan error, 1)
	go func() { firstDone <- w.Confirm(context.Background()) }()
	<-started

	// A second action confirmed while the first commit is still on the wire
	// is rejected without reaching the network.
	require.NoError(t, w.SubmitCheckout(validCheckout()))
	assert.ErrorIs(t, w.Confirm(context.Background()), ErrOperationInFlight)

	close(release)
	require.NoError(t, <-firstDone)
	movements.AssertNumberOfCalls(t, "Checkout", 1)

	// The first commit completed through the success screen.
	assert.Eventually(t, func() bool {
		return w.State().Mode == ModeSelection
	}, time.Second, 5*time.Millisecond)
}

func TestWorkflow_CancelHasZeroNetworkEffect(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeCheckout))
	require.NoError(t, w.SubmitCheckout(validCheckout()))

	assert.True(t, w.Cancel())
	assert.ErrorIs(t, w.Confirm(context.Background()), ErrNothingPending)
	movements.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	assert.Equal(t, ModeCheckout, w.State().Mode)
}

func TestWorkflow_ReturnValidationListsMissingLabels(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeReturn))

	form := validReturn()
	form.ReturnerName = ""
	form.SecurityName = " "

	err := w.SubmitReturn("m-1", form)
	require.Error(t, err)
	assert.Equal(t, "Please provide: Returner Name, Security Witness.", err.Error())
	movements.AssertNotCalled(t, "Return", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_ReturnUnknownAsset(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeReturn))

	err := w.SubmitReturn("m-404", validReturn())
	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Equal(t, "Selected asset was not found. Please refresh and try again.", w.State().Error)
	movements.AssertNotCalled(t, "Return", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_ReturnHappyPath(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil)
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil)
	require.NoError(t, w.Choose(context.Background(), ModeReturn))

	require.NoError(t, w.SubmitReturn("m-1", validReturn()))
	pending := w.State().Pending
	require.NotNil(t, pending)
	assert.Equal(t, "Confirm Return", pending.Title)

	movements.On("Return", mock.Anything, "m-1", mock.AnythingOfType("*domain.ReturnRecord")).
		Return(env(t, `{"isSuccess": true}`), nil).Once()

	require.NoError(t, w.Confirm(context.Background()))

	st := w.State()
	assert.Equal(t, ModeSuccess, st.Mode)

	// The returned asset leaves the active set; the record itself is never
	// mutated locally.
	require.Len(t, st.ActiveAssets, 1)
	assert.Equal(t, "m-2", st.ActiveAssets[0].ID)

	ret := movements.Calls[len(movements.Calls)-1].Arguments.Get(2).(*domain.ReturnRecord)
	assert.Equal(t, "Jane Doe", ret.ProcessedBy)
	assert.Equal(t, domain.ReturnConditionGood, ret.Condition)
}

func TestWorkflow_LoadFailureSurfacesInline(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	w, _ := newTestWorkflow(t, movements, reasons)

	movements.On("List", mock.Anything).
		Return(env(t, `{"hasError": true, "message": "FDMS unavailable"}`), nil).Once()

	require.NoError(t, w.Choose(context.Background(), ModeReturn))
	st := w.State()
	assert.Equal(t, ModeReturn, st.Mode)
	assert.Equal(t, "FDMS unavailable", st.Error)

	// A failed load is retried on the next mode entry.
	movements.On("List", mock.Anything).Return(env(t, activeListBody), nil).Once()
	reasons.On("List", mock.Anything).Return(env(t, `{"isSuccess": true, "content": []}`), nil).Once()
	w.Back()
	require.NoError(t, w.Choose(context.Background(), ModeReturn))
	assert.Len(t, w.State().ActiveAssets, 2)
}

func TestManager_SweepIdle(t *testing.T) {
	movements := new(MockMovementAPI)
	reasons := new(MockReasonAPI)
	store := session.NewMemoryStore()

	m := NewManager(func() *Workflow {
		return New(movements, reasons, store)
	}, 50*time.Millisecond)

	id, _ := m.Create()
	_, ok := m.Get(id)
	require.True(t, ok)

	assert.Equal(t, 0, m.SweepIdle())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, m.SweepIdle())
	_, ok = m.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}
