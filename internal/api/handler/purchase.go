package handler

import (
	"net/http"

	"github.com/mcoot/spendboard/internal/api/request"
	"github.com/mcoot/spendboard/internal/api/response"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/purchase"
)

// PurchaseHandler handles purchases and the pending queue
type PurchaseHandler struct {
	purchaseService *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

func appIDPtr(v *int64) *model.AppID {
	if v == nil {
		return nil
	}
	id := model.AppID(*v)
	return &id
}

// Add handles POST /api/v1/purchases
func (h *PurchaseHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddPurchaseRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	if req.ParticipantID <= 0 {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	if req.GameName == "" {
		WriteError(w, NewInvalidRequestError("game_name is required"))
		return
	}
	if req.Price == nil {
		WriteError(w, NewInvalidRequestError("price is required"))
		return
	}

	p, err := h.purchaseService.Add(r.Context(), purchase.NewPurchase{
		ParticipantID: model.ParticipantID(req.ParticipantID),
		GameName:      req.GameName,
		GameImage:     req.GameImage,
		GameAppID:     appIDPtr(req.GameAppID),
		Price:         *req.Price,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, p)
}

// UpdatePrice handles PATCH /api/v1/purchases/{id}
func (h *PurchaseHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdatePriceRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Price == nil {
		WriteError(w, NewInvalidRequestError("price is required"))
		return
	}

	if err := h.purchaseService.UpdatePrice(r.Context(), model.PurchaseID(id), *req.Price); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /api/v1/purchases/{id}
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.purchaseService.Delete(r.Context(), model.PurchaseID(id)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// ListPending handles GET /api/v1/pending
func (h *PurchaseHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.purchaseService.ListPending(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if pending == nil {
		pending = []*model.PendingPurchase{}
	}

	response.JSON(w, http.StatusOK, response.Pending{Pending: pending})
}

// Suggest handles POST /api/v1/pending
func (h *PurchaseHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req request.SuggestRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	if req.ParticipantID <= 0 {
		WriteError(w, NewInvalidRequestError("participant_id is required"))
		return
	}
	if req.GameName == "" {
		WriteError(w, NewInvalidRequestError("game_name is required"))
		return
	}
	if req.Price == nil {
		WriteError(w, NewInvalidRequestError("price is required"))
		return
	}

	p, err := h.purchaseService.Suggest(r.Context(), purchase.NewPending{
		ParticipantID: model.ParticipantID(req.ParticipantID),
		GameName:      req.GameName,
		GameImage:     req.GameImage,
		GameAppID:     appIDPtr(req.GameAppID),
		Price:         *req.Price,
		Currency:      req.Currency,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, p)
}

// Approve handles POST /api/v1/pending/{id}/approve
func (h *PurchaseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.ApproveRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.purchaseService.Approve(r.Context(), model.PendingPurchaseID(id), req.Price)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, p)
}

// Reject handles DELETE /api/v1/pending/{id}
func (h *PurchaseHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.purchaseService.Reject(r.Context(), model.PendingPurchaseID(id)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
