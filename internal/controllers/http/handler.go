package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"kidswear-backend/internal/domain"
	"kidswear-backend/internal/infra"
	"kidswear-backend/internal/metrics"
	"kidswear-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const productListCacheKey = "products:all"

type Handler struct {
	catalog *services.CatalogService
	cart    *services.CartService
	payment *services.PaymentService
	rdb     *redis.Client
	db      *gorm.DB
	keysSet bool
}

func NewHandler(catalog *services.CatalogService, cart *services.CartService, payment *services.PaymentService, rdb *redis.Client, db *gorm.DB, keysSet bool) *Handler {
	return &Handler{
		catalog: catalog,
		cart:    cart,
		payment: payment,
		rdb:     rdb,
		db:      db,
		keysSet: keysSet,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/products", h.CreateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.GET("/wishlist", h.GetWishlist)
		api.POST("/wishlist", h.AddToWishlist)
		api.DELETE("/wishlist", h.RemoveFromWishlist)

		api.GET("/cart", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.PUT("/cart", h.UpdateCart)
		api.DELETE("/cart", h.RemoveFromCart)

		api.POST("/payment/create-order", h.CreatePaymentOrder)
		api.POST("/payment/verify", h.VerifyPayment)
		api.POST("/payment/webhook", h.PaymentWebhook)

		api.GET("/orders", h.ListOrders)
		api.PUT("/orders/:id", h.UpdateOrder)
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Kids Fashion API running"})
}

func (h *Handler) Healthz(c *gin.Context) {
	dbOK := false
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err == nil {
			dbOK = sqlDB.PingContext(c.Request.Context()) == nil
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"backend":          "running",
		"database":         dbOK,
		"razorpay_key_set": h.keysSet,
	})
}

func (h *Handler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Gender:   c.Query("gender"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if v := c.Query("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid min_price"})
			return
		}
		filter.MinPrice = &p
	}
	if v := c.Query("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid max_price"})
			return
		}
		filter.MaxPrice = &p
	}

	ctx := c.Request.Context()
	unfiltered := filter == (domain.ProductFilter{})

	if unfiltered && h.rdb != nil {
		if b, err := h.rdb.Get(ctx, productListCacheKey).Result(); err == nil {
			var items []domain.Product
			if json.Unmarshal([]byte(b), &items) == nil {
				c.JSON(http.StatusOK, gin.H{"items": items})
				return
			}
		}
	}

	items, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.Product{}
	}

	if unfiltered && h.rdb != nil {
		if data, err := json.Marshal(items); err == nil {
			h.rdb.Set(ctx, productListCacheKey, data, 10*time.Second)
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	p := &domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		MRP:         req.MRP,
		Gender:      req.Gender,
		Category:    req.Category,
		Stock:       req.Stock,
		Tags:        req.Tags,
		ImageURLs:   req.ImageURLs,
	}
	if err := h.catalog.CreateProduct(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}
	h.invalidateProductList()
	c.JSON(http.StatusOK, gin.H{"id": p.ID})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	h.invalidateProductList()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) GetWishlist(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id required"})
		return
	}
	items, err := h.cart.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req WishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	item, err := h.cart.AddToWishlist(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": item.ID})
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	deleted, err := h.cart.RemoveFromWishlist(c.Request.Context(), c.Query("user_id"), c.Query("product_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) GetCart(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id required"})
		return
	}
	items, err := h.cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	item, err := h.cart.AddToCart(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": item.ID, "quantity": item.Quantity})
}

func (h *Handler) UpdateCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := h.cart.UpdateCartQuantity(c.Request.Context(), req.UserID, req.ProductID, req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	deleted, err := h.cart.RemoveFromCart(c.Request.Context(), c.Query("user_id"), c.Query("product_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{
			UserID:    it.UserID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	gwOrder, keyID, err := h.payment.CreateOrder(c.Request.Context(), req.UserID, items, req.TotalPrice)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": gwOrder, "key_id": keyID})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := h.payment.VerifyPayment(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PaymentWebhook always acknowledges: the gateway retries on non-2xx
// and an unusable payload must not trigger a retry storm.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var event services.WebhookEvent
	_ = c.ShouldBindJSON(&event)
	h.payment.HandleWebhook(c.Request.Context(), event)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.payment.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"items": orders})
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	err := h.payment.UpdateOrder(c.Request.Context(), id, c.Query("payment_status"), c.Query("shipping_status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) invalidateProductList() {
	if h.rdb != nil {
		h.rdb.Del(context.Background(), productListCacheKey)
	}
}

// writeError maps service errors onto the API's status codes. Gateway
// failures relay the upstream status and body unchanged.
func (h *Handler) writeError(c *gin.Context, err error) {
	var gwErr *infra.GatewayError
	if errors.As(err, &gwErr) {
		c.JSON(gwErr.StatusCode, gin.H{"detail": gwErr.Body})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid signature"})
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
	case errors.Is(err, services.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Cart item not found"})
	case errors.Is(err, services.ErrNoUpdateFields):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No fields to update"})
	case errors.Is(err, services.ErrUnknownStatus),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrBadQuantity),
		errors.Is(err, domain.ErrNegativeTotal):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
