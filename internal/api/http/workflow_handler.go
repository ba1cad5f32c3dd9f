package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"fdms-kiosk-backend/internal/remote"
	"fdms-kiosk-backend/internal/workflow"
)

// WorkflowHandler exposes kiosk workflow sessions over HTTP. Each kiosk
// station creates one session and drives it through the
// submit → confirm → commit protocol.
type WorkflowHandler struct {
	manager *workflow.Manager
}

func NewWorkflowHandler(manager *workflow.Manager) *WorkflowHandler {
	return &WorkflowHandler{manager: manager}
}

func (h *WorkflowHandler) session(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	id := mux.Vars(r)["id"]
	wf, ok := h.manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown kiosk session")
		return nil, false
	}
	return wf, true
}

// HandleCreate starts a fresh workflow session.
func (h *WorkflowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, wf := h.manager.Create()
	writeContent(w, http.StatusCreated, map[string]any{
		"sessionId": id,
		"state":     wf.State(),
	})
}

// HandleState snapshots the session for the kiosk UI.
func (h *WorkflowHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	writeContent(w, http.StatusOK, wf.State())
}

// HandleChoose enters checkout or return mode.
func (h *WorkflowHandler) HandleChoose(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode workflow.Mode `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := wf.Choose(r.Context(), req.Mode); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeContent(w, http.StatusOK, wf.State())
}

// HandleBack returns to the selection screen.
func (h *WorkflowHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	wf.Back()
	writeContent(w, http.StatusOK, wf.State())
}

// HandleSearch filters the loaded active list; it never touches the server.
func (h *WorkflowHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	writeContent(w, http.StatusOK, wf.Search(r.URL.Query().Get("query")))
}

// HandleSubmitCheckout validates the checkout form and arms the
// confirmation gate.
func (h *WorkflowHandler) HandleSubmitCheckout(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	var form workflow.CheckoutForm
	if !decodeBody(w, r, &form) {
		return
	}
	if err := wf.SubmitCheckout(form); err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeContent(w, http.StatusOK, wf.State())
}

// HandleSubmitReturn validates the return form against the selected asset
// and arms the confirmation gate.
func (h *WorkflowHandler) HandleSubmitReturn(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		AssetID string `json:"assetId"`
		workflow.ReturnForm
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := wf.SubmitReturn(req.AssetID, req.ReturnForm); err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeContent(w, http.StatusOK, wf.State())
}

// HandleConfirm commits the pending action. Once dispatched, the remote
// call runs to completion even if the kiosk navigates away, so the commit
// is detached from the request's cancellation.
func (h *WorkflowHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := wf.Confirm(context.WithoutCancel(r.Context())); err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeContent(w, http.StatusOK, wf.State())
}

// HandleCancel drops the pending confirmation with zero network effect.
func (h *WorkflowHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.session(w, r)
	if !ok {
		return
	}
	wf.Cancel()
	writeContent(w, http.StatusOK, wf.State())
}

func writeWorkflowError(w http.ResponseWriter, err error) {
	var valErr *workflow.ValidationError
	switch {
	case errors.As(err, &valErr):
		writeError(w, http.StatusUnprocessableEntity, valErr.Error())
	case errors.Is(err, workflow.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrNothingPending),
		errors.Is(err, workflow.ErrOperationInFlight):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var reqErr *remote.RequestError
		if errors.As(err, &reqErr) {
			writeError(w, http.StatusBadGateway, reqErr.Message)
			return
		}
		writeError(w, http.StatusBadGateway, remote.ErrorMessage(err, remote.DefaultFailureMessage))
	}
}
