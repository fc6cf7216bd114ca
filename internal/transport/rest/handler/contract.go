package handler

import (
	"clausecheck/internal/model"
	"clausecheck/internal/service"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// ContractHandler handles contract registration, evaluator-input intake and
// pipeline dispatch
type ContractHandler struct {
	contractSvc *service.ContractService
	pipelineSvc *service.PipelineService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractSvc *service.ContractService, pipelineSvc *service.PipelineService) *ContractHandler {
	return &ContractHandler{
		contractSvc: contractSvc,
		pipelineSvc: pipelineSvc,
	}
}

// RegisterContractRequest is the body for POST /v1/contracts
type RegisterContractRequest struct {
	Name          string            `json:"name"`
	SectionTitles map[string]string `json:"sectionTitles"`
}

// SubmitInputsRequest is the body for PUT /v1/contracts/{id}/inputs
type SubmitInputsRequest struct {
	GlobalClaims    []model.GlobalClaim     `json:"global_claims"`
	SectionFindings []model.SectionFindings `json:"section_findings"`
}

// Create handles POST /v1/contracts
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contract, err := h.contractSvc.Register(r.Context(), req.Name, req.SectionTitles)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, contract)
}

// List handles GET /v1/contracts
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contracts)
}

// Get handles GET /v1/contracts/{id}
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	contract, err := h.contractSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	status, err := h.pipelineSvc.Status(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contract": contract,
		"status":   status,
	})
}

// SubmitInputs handles PUT /v1/contracts/{id}/inputs
func (h *ContractHandler) SubmitInputs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req SubmitInputsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contractSvc.SubmitInputs(r.Context(), id, req.GlobalClaims, req.SectionFindings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// Verify handles POST /v1/contracts/{id}/verify
func (h *ContractHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.pipelineSvc.Dispatch(id); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "verifying"})
}

// CancelVerify handles POST /v1/contracts/{id}/cancel
func (h *ContractHandler) CancelVerify(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !h.pipelineSvc.Cancel(id) {
		writeError(w, http.StatusNotFound, "no pipeline running for contract")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}
