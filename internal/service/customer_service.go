package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

type CustomerService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewCustomerService(store domain.Store, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		store:  store,
		logger: logger,
	}
}

type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	DateOfBirth *time.Time
}

func (s *CustomerService) Create(input *CustomerInput) (*domain.Customer, error) {
	s.logger.Info("Creating customer", "email", input.Email)

	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}

	if err := s.checkConflicts(input.Email, input.Phone, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		ID:          uuid.New(),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		DateOfBirth: input.DateOfBirth,
		Active:      true,
	}

	if err := s.store.Customers().Create(customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func validateCustomerInput(input *CustomerInput) error {
	if input.FirstName == "" || input.LastName == "" {
		return errors.NewAppError(errors.InvalidInput, "first and last name are required")
	}
	if input.Email == "" {
		return errors.NewAppError(errors.InvalidInput, "email is required")
	}
	if input.Phone == "" {
		return errors.NewAppError(errors.InvalidInput, "phone is required")
	}
	return nil
}

// checkConflicts rejects an email or phone already belonging to another
// customer. The unique constraints remain the authoritative guard; this check
// exists for a clearer error before the write.
func (s *CustomerService) checkConflicts(email, phone string, selfID uuid.UUID) error {
	existing, err := s.store.Customers().GetByEmail(email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return errors.NewAppErrorf(errors.CustomerConflict, "customer with email %s already exists", email)
		}
	case errors.From(err).Code != errors.EntityNotFound:
		return err
	}

	existing, err = s.store.Customers().GetByPhone(phone)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return errors.NewAppErrorf(errors.CustomerConflict, "customer with phone %s already exists", phone)
		}
	case errors.From(err).Code != errors.EntityNotFound:
		return err
	}

	return nil
}

func (s *CustomerService) Get(id uuid.UUID) (*domain.Customer, error) {
	return s.store.Customers().Get(id)
}

func (s *CustomerService) GetByEmail(email string) (*domain.Customer, error) {
	return s.store.Customers().GetByEmail(email)
}

func (s *CustomerService) GetByPhone(phone string) (*domain.Customer, error) {
	return s.store.Customers().GetByPhone(phone)
}

func (s *CustomerService) List() ([]*domain.Customer, error) {
	return s.store.Customers().List()
}

func (s *CustomerService) ListActive() ([]*domain.Customer, error) {
	return s.store.Customers().ListActive()
}

func (s *CustomerService) SearchByName(name string) ([]*domain.Customer, error) {
	if name == "" {
		return s.store.Customers().List()
	}
	return s.store.Customers().SearchByName(name)
}

func (s *CustomerService) Update(id uuid.UUID, input *CustomerInput) (*domain.Customer, error) {
	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}

	customer, err := s.store.Customers().Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.checkConflicts(input.Email, input.Phone, customer.ID); err != nil {
		return nil, err
	}

	customer.FirstName = input.FirstName
	customer.LastName = input.LastName
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.DateOfBirth = input.DateOfBirth

	if err := s.store.Customers().Update(customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer updated", "customer_id", id)
	return customer, nil
}

func (s *CustomerService) Activate(id uuid.UUID) error {
	return s.store.Customers().SetActive(id, true)
}

func (s *CustomerService) Deactivate(id uuid.UUID) error {
	return s.store.Customers().SetActive(id, false)
}

func (s *CustomerService) Delete(id uuid.UUID) error {
	if err := s.store.Customers().Delete(id); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", "customer_id", id)
	return nil
}

func (s *CustomerService) Count() (int64, error) {
	return s.store.Customers().Count()
}

func (s *CustomerService) CountActive() (int64, error) {
	return s.store.Customers().CountActive()
}
