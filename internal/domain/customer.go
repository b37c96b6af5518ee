package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer owns zero or more accounts. Email and phone are unique across all
// customers.
type Customer struct {
	ID          uuid.UUID  `json:"customer_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CustomerRepository interface {
	Create(customer *Customer) error
	Get(id uuid.UUID) (*Customer, error)
	GetByEmail(email string) (*Customer, error)
	GetByPhone(phone string) (*Customer, error)
	List() ([]*Customer, error)
	ListActive() ([]*Customer, error)
	SearchByName(name string) ([]*Customer, error)
	Update(customer *Customer) error
	SetActive(id uuid.UUID, active bool) error
	Delete(id uuid.UUID) error
	ExistsByEmail(email string) (bool, error)
	ExistsByPhone(phone string) (bool, error)
	Count() (int64, error)
	CountActive() (int64, error)
}
