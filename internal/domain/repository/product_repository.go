package repository

import (
	"context"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Create guarda también las imágenes. Update aplica solo los campos presentes en changes.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error)
	Update(ctx context.Context, id int64, changes entity.ProductChanges) error
	Delete(ctx context.Context, id int64) error
}
