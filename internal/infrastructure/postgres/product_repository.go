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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, price, inventory, category, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste el producto y sus imágenes en una transacción.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO products (name, description, price, inventory, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query, p.Name, p.Description, p.Price, p.Inventory, p.Category).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if err := insertImages(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con sus imágenes.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Inventory, &p.Category, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.loadImages(ctx, []*entity.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// List lista productos filtrados, más recientes primero, y el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f entity.ProductFilter) ([]*entity.Product, int, error) {
	var w whereBuilder
	if f.Name != "" {
		w.add(`name ILIKE '%' || ? || '%'`, f.Name)
	}
	if f.Category != "" {
		w.add(`category = ?`, f.Category)
	}
	if f.MinPrice != nil {
		w.add(`price >= ?`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add(`price <= ?`, *f.MaxPrice)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + w.sql() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Inventory, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if err := r.loadImages(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update aplica los campos presentes en ch. Los ausentes llegan como NULL y
// COALESCE conserva el valor de la fila, inventory incluido.
func (r *ProductRepo) Update(ctx context.Context, id int64, ch entity.ProductChanges) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE products
		SET name        = COALESCE($2::text, name),
		    description = COALESCE($3::text, description),
		    price       = COALESCE($4::numeric, price),
		    inventory   = COALESCE($5::integer, inventory),
		    category    = COALESCE($6::text, category),
		    updated_at  = now()
		WHERE id = $1`
	tag, err := tx.Exec(ctx, query, id, ch.Name, ch.Description, ch.Price, ch.Inventory, ch.Category)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if ch.Images != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete product images: %w", err)
		}
		if err := insertImages(ctx, tx, id, ch.Images); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete elimina el producto. Si figura en pedidos devuelve ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertImages(ctx context.Context, tx pgx.Tx, productID int64, images []string) error {
	if len(images) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, url := range images {
		batch.Queue(`INSERT INTO product_images (product_id, url, position) VALUES ($1, $2, $3)`, productID, url, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert product images: %w", err)
	}
	return nil
}

func (r *ProductRepo) loadImages(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		p.Images = []string{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	rows, err := r.q.Query(ctx,
		`SELECT product_id, url FROM product_images WHERE product_id = ANY($1) ORDER BY product_id, position, id`, ids)
	if err != nil {
		return fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pid int64
			url string
		)
		if err := rows.Scan(&pid, &url); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		if p, ok := byID[pid]; ok {
			p.Images = append(p.Images, url)
		}
	}
	return rows.Err()
}
