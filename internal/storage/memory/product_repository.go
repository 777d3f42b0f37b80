package memory

import "github.com/vladislavdragonenkov/sales-oms/internal/domain"

// productRepository — табличная часть Store для каталога продуктов.
type productRepository struct {
	s *Store
}

func (r *productRepository) Get(id int64) (domain.Product, error) {
	product, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (r *productRepository) Create(product domain.Product) error {
	if _, exists := r.s.products[product.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.s.products[product.ID] = product
	return nil
}

// Save перезаписывает продукт, проверяя версию (optimistic locking).
func (r *productRepository) Save(product domain.Product) error {
	current, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if current.Version != product.Version {
		return domain.ErrProductVersionConflict
	}
	product.Version++
	r.s.products[product.ID] = product
	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
