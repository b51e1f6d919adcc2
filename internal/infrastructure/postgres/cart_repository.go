package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo carrito y sus líneas sobre PostgreSQL (usable con pool o tx).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// GetOrCreate crea el carrito si no existe; UNIQUE(user_id) garantiza uno por usuario.
func (r *CartRepo) GetOrCreate(ctx context.Context, userID int64) (*entity.Cart, error) {
	if _, err := r.q.Exec(ctx,
		`INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	cart, err := r.byUser(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("create cart: carrito no encontrado tras insertar")
	}
	return cart, nil
}

// LockByUser SELECT ... FOR UPDATE del carrito del usuario.
func (r *CartRepo) LockByUser(ctx context.Context, userID int64) (*entity.Cart, error) {
	return r.byUser(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *CartRepo) byUser(ctx context.Context, query string, userID int64) (*entity.Cart, error) {
	var c entity.Cart
	err := r.q.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return &c, nil
}

// ListItems líneas del carrito con nombre, precio e inventario vigentes del producto.
func (r *CartRepo) ListItems(ctx context.Context, cartID int64) ([]*entity.CartItem, error) {
	const query = `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, p.name, p.price, p.inventory,
		       COALESCE((SELECT pi.url FROM product_images pi
		                 WHERE pi.product_id = p.id ORDER BY pi.position, pi.id LIMIT 1), '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
	rows, err := r.q.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()
	var items []*entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Name, &it.Price, &it.Inventory, &it.Image); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpsertItem inserta la línea o suma la cantidad a la existente.
func (r *CartRepo) UpsertItem(ctx context.Context, cartID, productID int64, qty int) error {
	const query = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, cartID, productID, qty); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// SetItemQuantity fija la cantidad solo si la línea pertenece al carrito del usuario.
func (r *CartRepo) SetItemQuantity(ctx context.Context, userID, itemID int64, qty int) (bool, error) {
	const query = `
		UPDATE cart_items ci SET quantity = $3, updated_at = now()
		FROM carts c
		WHERE ci.cart_id = c.id AND ci.id = $2 AND c.user_id = $1`
	tag, err := r.q.Exec(ctx, query, userID, itemID, qty)
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteItem elimina la línea solo si pertenece al carrito del usuario.
func (r *CartRepo) DeleteItem(ctx context.Context, userID, itemID int64) (bool, error) {
	const query = `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND ci.id = $2 AND c.user_id = $1`
	tag, err := r.q.Exec(ctx, query, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Clear elimina todas las líneas del carrito.
func (r *CartRepo) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
