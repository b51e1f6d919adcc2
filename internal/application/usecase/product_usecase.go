package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var minPrice = decimal.RequireFromString("0.01")

// ProductUseCase casos de uso del catálogo. El inventario solo baja vía checkout.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto con sus imágenes.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Price.LessThan(minPrice) || in.Inventory < 0 {
		return nil, domain.ErrInvalidInput
	}
	product := &entity.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Inventory:   in.Inventory,
		Category:    strings.TrimSpace(in.Category),
		Images:      in.Images,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// Update actualiza solo los campos presentes. Images no nulo reemplaza todas las imágenes.
// No parte de una lectura previa: inventory se escribe únicamente si viene en la petición.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	ch := entity.ProductChanges{
		Description: in.Description,
		Inventory:   in.Inventory,
		Images:      in.Images,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		ch.Name = &name
	}
	if in.Price != nil {
		if in.Price.LessThan(minPrice) {
			return nil, domain.ErrInvalidInput
		}
		price := in.Price.Round(2)
		ch.Price = &price
	}
	if in.Inventory != nil && *in.Inventory < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		ch.Category = &category
	}
	if err := uc.repo.Update(ctx, id, ch); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Delete elimina un producto. Si ya figura en pedidos devuelve ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.repo.Delete(ctx, id)
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	filter := entity.ProductFilter{
		Name:     strings.TrimSpace(q.Name),
		Category: strings.TrimSpace(q.Category),
		Limit:    q.Limit,
		Offset:   q.Offset(),
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice(q.MaxPrice); err != nil {
		return nil, err
	}
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Page: dto.NewPageResponse(q.PageRequest, total)}, nil
}

func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return &d, nil
}
