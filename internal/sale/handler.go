package sale

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/platform/httpx"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Handler exposes the sale-construction flow over HTTP. The draft key in the
// URL identifies one in-progress form; clients mint it once per form
// instance and reuse it across navigation.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/drafts/{key}", func(r chi.Router) {
		r.Post("/", h.begin)
		r.Get("/", h.state)
		r.Delete("/", h.cancel)

		r.Put("/product", h.selectProduct)
		r.Put("/price", h.editPrice)
		r.Put("/quantity", h.setQuantity)
		r.Post("/serials/toggle", h.toggleSerial)
		r.Put("/vehicle", h.setVehicle)

		r.Post("/items", h.addItem)
		r.Delete("/items/{lineID}", h.removeItem)
		r.Delete("/items", h.clearItems)

		r.Put("/customer-search", h.searchCustomers)
		r.Get("/customer-search", h.customerSearchResults)
		r.Put("/customer", h.setCustomer)
		r.Put("/payment", h.setPayment)
		r.Put("/gst", h.setGST)
		r.Put("/commission", h.setCommission)

		r.Post("/submit", h.submit)
	})
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) {
	var req BeginDraftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.Begin(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		h.logger.Error("begin draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.logger.Error("cancel draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectProduct(w http.ResponseWriter, r *http.Request) {
	var req SelectProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SelectProduct(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) editPrice(w http.ResponseWriter, r *http.Request) {
	var req EditPriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.EditPrice(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) toggleSerial(w http.ResponseWriter, r *http.Request) {
	var req ToggleSerialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.ToggleSerial(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) setVehicle(w http.ResponseWriter, r *http.Request) {
	var req VehicleInfoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetVehicle(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.AddItem(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "lineID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) clearItems(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearItems(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) searchCustomers(w http.ResponseWriter, r *http.Request) {
	var req CustomerSearchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.service.SearchCustomers(r.Context(), chi.URLParam(r, "key"), req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) customerSearchResults(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.CustomerSearchResults(chi.URLParam(r, "key"))
	if err != nil && !errors.Is(err, shared.ErrUnavailable) {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"degraded": err != nil,
	})
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req SetCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetCustomer(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	var req SetPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetPayment(r.Context(), chi.URLParam(r, "key"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) setGST(w http.ResponseWriter, r *http.Request) {
	var info GSTInfo
	if err := httpx.DecodeJSON(r, &info); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetGST(r.Context(), chi.URLParam(r, "key"), info)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) setCommission(w http.ResponseWriter, r *http.Request) {
	var info CommissionInfo
	if err := httpx.DecodeJSON(r, &info); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	state, err := h.service.SetCommission(r.Context(), chi.URLParam(r, "key"), info)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Submit(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.logger.Error("submit sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
