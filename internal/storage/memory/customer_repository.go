package memory

import "github.com/vladislavdragonenkov/sales-oms/internal/domain"

// customerRepository — табличная часть Store для клиентов.
// Работает только внутри InTx: блокировку держит транзакция.
type customerRepository struct {
	s *Store
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	customer, ok := r.s.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepository) Create(customer domain.Customer) error {
	if _, exists := r.s.customers[customer.ID]; exists {
		return domain.ErrAlreadyExists
	}
	r.s.customers[customer.ID] = customer
	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
