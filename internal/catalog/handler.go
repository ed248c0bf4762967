package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/platform/httpx"
	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/pricing"
)

// Handler exposes inventory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/categories/{categoryID}", func(r chi.Router) {
		r.Get("/inventory", h.listInventory)
		r.Get("/products/{productID}/serials", h.availableSerials)
		r.Post("/discount", h.applyCategoryDiscount)
	})
	r.Route("/products/{productID}", func(r chi.Router) {
		r.Get("/", h.getProduct)
		r.Put("/pricing", h.updatePricing)
		r.Post("/stock", h.addStock)
	})
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := paramID(r, "categoryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "categoryID must be numeric")
		return
	}
	snapshot, err := h.service.ListInventory(r.Context(), categoryID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}

func (h *Handler) availableSerials(w http.ResponseWriter, r *http.Request) {
	categoryID, err := paramID(r, "categoryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "categoryID must be numeric")
		return
	}
	productID, err := paramID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "productID must be numeric")
		return
	}
	pool, err := h.service.AvailableSerials(r.Context(), categoryID, productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"serials": pool, "count": len(pool)})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := paramID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "productID must be numeric")
		return
	}
	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type updatePricingRequest struct {
	Class pricing.Class `json:"class" validate:"required,oneof=B2C B2B"`
	Field pricing.Field `json:"field" validate:"required,oneof=mrp discount_percent discount_amount selling_price"`
	Value float64       `json:"value"`
}

func (h *Handler) updatePricing(w http.ResponseWriter, r *http.Request) {
	productID, err := paramID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "productID must be numeric")
		return
	}
	var req updatePricingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if !req.Class.Valid() || !req.Field.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "unknown class or field")
		return
	}
	product, err := h.service.UpdatePricing(r.Context(), productID, req.Class, req.Field, req.Value)
	if err != nil {
		h.logger.Error("update pricing", slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	productID, err := paramID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "productID must be numeric")
		return
	}
	var input AddStockInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	input.ProductID = productID
	if err := h.service.AddStock(r.Context(), input); err != nil {
		h.logger.Error("add stock", slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type categoryDiscountRequest struct {
	Class pricing.Class `json:"class" validate:"required,oneof=B2C B2B"`
	Pct   float64       `json:"pct" validate:"gte=0,lte=100"`
}

func (h *Handler) applyCategoryDiscount(w http.ResponseWriter, r *http.Request) {
	categoryID, err := paramID(r, "categoryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "categoryID must be numeric")
		return
	}
	var req categoryDiscountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if !req.Class.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "unknown class")
		return
	}
	if err := h.service.ApplyCategoryDiscount(r.Context(), categoryID, req.Class, req.Pct); err != nil {
		h.logger.Error("category discount", slog.Int64("category_id", categoryID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func paramID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
