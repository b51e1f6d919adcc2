package dto

import (
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// NewUserResponse convierte una entidad User (sin hash).
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewProductResponse convierte una entidad Product.
func NewProductResponse(p *entity.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Inventory:   p.Inventory,
		Category:    p.Category,
		Images:      images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewCartResponse arma el carrito con subtotales y total recalculados.
func NewCartResponse(cart *entity.Cart, items []*entity.CartItem) CartResponse {
	out := CartResponse{ID: cart.ID, Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Inventory: it.Inventory,
			Image:     it.Image,
			Subtotal:  it.Subtotal().Round(2),
		})
	}
	out.Total = entity.CartTotal(items)
	return out
}

// NewOrderItemResponses convierte las líneas de un pedido.
func NewOrderItemResponses(items []*entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal().Round(2),
		})
	}
	return out
}

// NewOrderResponse convierte una entidad Order.
func NewOrderResponse(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		UserName:        o.UserName,
		UserEmail:       o.UserEmail,
		Status:          o.Status,
		Total:           o.Total,
		PaymentIntentID: o.PaymentIntentID,
		Items:           NewOrderItemResponses(o.Items),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// NewOrderResponses convierte una lista de pedidos.
func NewOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
