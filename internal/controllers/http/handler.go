package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"shop-service/internal/domain"
	"shop-service/internal/infra/rates"
	"shop-service/internal/infra/telegram"
	"shop-service/internal/infra/wallet"
	"shop-service/internal/services"
)

const productsCacheKey = "cache:products"
const productsCacheTTL = 10 * time.Second

type Handler struct {
	catalog  *services.CatalogService
	cart     *services.CartService
	orders   *services.OrderService
	payments *services.PaymentService
	avatars  telegram.AvatarFetcherInterface
	rdb      *redis.Client
}

func NewHandler(
	catalog *services.CatalogService,
	cart *services.CartService,
	orders *services.OrderService,
	payments *services.PaymentService,
	avatars telegram.AvatarFetcherInterface,
	rdb *redis.Client,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		payments: payments,
		avatars:  avatars,
		rdb:      rdb,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Status)

	r.POST("/products", h.AddProduct)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
	r.GET("/categories", h.ListCategories)
	r.DELETE("/categories/:name", h.DeleteCategory)

	r.GET("/users/:user_id/avatar", h.GetAvatar)

	r.POST("/cart/items", h.AddToCart)
	r.DELETE("/cart/items", h.RemoveFromCart)
	r.GET("/cart/:user_id", h.GetCart)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/:id/payment", h.CheckPayment)
	r.PUT("/orders/delivery", h.UpdateDelivery)
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Authorization successful!"})
}

func (h *Handler) AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &domain.Product{
		Name:     req.Name,
		Price:    req.Price,
		Gender:   req.Gender,
		Category: req.Category,
		ImageURL: req.ImageURL,
	}
	if err := h.catalog.AddProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, services.ErrProductExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateProductsCache()
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, productsCacheKey).Result(); err == nil {
			var products []domain.Product
			if json.Unmarshal([]byte(b), &products) == nil {
				c.JSON(http.StatusOK, products)
				return
			}
		}
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(products); err == nil {
			h.rdb.Set(ctx, productsCacheKey, data, productsCacheTTL)
		}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateProductsCache()
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCategories(c *gin.Context) {
	gender := c.DefaultQuery("gender", "unisex")
	categories, err := h.catalog.ListCategories(c.Request.Context(), gender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("name")); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateProductsCache()
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetAvatar(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	body, err := h.avatars.FetchAvatar(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, telegram.ErrAvatarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.cart.AddItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, services.ErrBadQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added/updated in cart."})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.cart.RemoveItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, services.ErrBadQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCartItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart."})
}

func (h *Handler) GetCart(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	items, err := h.cart.Items(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []domain.CartProduct{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.UserID, req.Items, req.Total)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, rates.ErrRateUnavailable), errors.Is(err, wallet.ErrWalletUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order, req.Items))
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, items, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orderResponse(order, items))
}

func (h *Handler) CheckPayment(c *gin.Context) {
	outcome, err := h.payments.CheckPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrOrderNotPayable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	switch outcome {
	case services.OutcomeAlreadyPaid:
		c.JSON(http.StatusOK, PaymentStatusResponse{Status: domain.StatusPaid, Message: "Order is already paid."})
	case services.OutcomeSettled:
		c.JSON(http.StatusOK, PaymentStatusResponse{Status: domain.StatusPaid, Message: "Payment confirmed."})
	default:
		c.JSON(http.StatusOK, PaymentStatusResponse{Status: domain.StatusUnpaid, Message: "Payment not yet received or confirmed."})
	}
}

func (h *Handler) UpdateDelivery(c *gin.Context) {
	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delivery := domain.Delivery{
		Name:       req.Name,
		TgUsername: req.TgUsername,
		Address:    req.Address,
		Postcode:   req.Postcode,
		City:       req.City,
		Country:    req.Country,
	}
	order, items, err := h.orders.UpdateDelivery(c.Request.Context(), req.OrderID, delivery)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrOrderNotPaid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, orderResponse(order, items))
}

func (h *Handler) invalidateProductsCache() {
	if h.rdb != nil {
		h.rdb.Del(context.Background(), productsCacheKey)
	}
}
