package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

type customerRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewCustomerRepository(db SQLExecutor, logger *slog.Logger) domain.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

const customerColumns = `id, first_name, last_name, email, phone, address, date_of_birth, active, created_at, updated_at`

func (r *customerRepository) Create(customer *domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.DateOfBirth,
		customer.Active,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("Duplicate customer email or phone", "email", customer.Email)
			return errors.NewAppError(errors.CustomerConflict, "customer with this email or phone already exists")
		}
		r.logger.Error("Failed to create customer", "customer_id", customer.ID, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to create customer").WithDetails(err.Error())
	}

	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.logger.Info("Customer created", "customer_id", customer.ID)
	return nil
}

func (r *customerRepository) Get(id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.getOne(query, id)
}

func (r *customerRepository) GetByEmail(email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.getOne(query, email)
}

func (r *customerRepository) GetByPhone(phone string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	return r.getOne(query, phone)
}

func (r *customerRepository) getOne(query string, arg interface{}) (*domain.Customer, error) {
	row := r.db.QueryRow(query, arg)

	customer, err := scanCustomerRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewAppError(errors.EntityNotFound, "customer not found")
		}
		r.logger.Error("Failed to get customer", "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to get customer").WithDetails(err.Error())
	}
	return customer, nil
}

func scanCustomerRow(scan func(...interface{}) error) (*domain.Customer, error) {
	var customer domain.Customer
	var dob sql.NullTime

	err := scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&dob,
		&customer.Active,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dob.Valid {
		customer.DateOfBirth = &dob.Time
	}
	return &customer, nil
}

func (r *customerRepository) List() ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at`
	return r.queryCustomers(query)
}

func (r *customerRepository) ListActive() ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE active ORDER BY created_at`
	return r.queryCustomers(query)
}

func (r *customerRepository) SearchByName(name string) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'
		ORDER BY created_at
	`
	return r.queryCustomers(query, name)
}

func (r *customerRepository) queryCustomers(query string, args ...interface{}) ([]*domain.Customer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query customers", "error", err)
		return nil, errors.NewAppError(errors.StorageFailure, "failed to query customers").WithDetails(err.Error())
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomerRow(rows.Scan)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageFailure, "failed to scan customer").WithDetails(err.Error())
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageFailure, "failed to iterate customers").WithDetails(err.Error())
	}

	return customers, nil
}

func (r *customerRepository) Update(customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5,
		    date_of_birth = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Exec(
		query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.DateOfBirth,
		time.Now(),
		customer.ID,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewAppError(errors.CustomerConflict, "customer with this email or phone already exists")
		}
		r.logger.Error("Failed to update customer", "customer_id", customer.ID, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to update customer").WithDetails(err.Error())
	}

	return r.requireRow(result)
}

func (r *customerRepository) SetActive(id uuid.UUID, active bool) error {
	result, err := r.db.Exec(`UPDATE customers SET active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to set customer active flag", "customer_id", id, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to update customer").WithDetails(err.Error())
	}

	return r.requireRow(result)
}

func (r *customerRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete customer", "customer_id", id, "error", err)
		return errors.NewAppError(errors.StorageFailure, "failed to delete customer").WithDetails(err.Error())
	}

	return r.requireRow(result)
}

func (r *customerRepository) requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageFailure, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		return errors.NewAppError(errors.EntityNotFound, "customer not found")
	}
	return nil
}

func (r *customerRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists(`SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email)
}

func (r *customerRepository) ExistsByPhone(phone string) (bool, error) {
	return r.exists(`SELECT EXISTS (SELECT 1 FROM customers WHERE phone = $1)`, phone)
}

func (r *customerRepository) exists(query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(query, arg).Scan(&exists); err != nil {
		return false, errors.NewAppError(errors.StorageFailure, "failed to check customer existence").WithDetails(err.Error())
	}
	return exists, nil
}

func (r *customerRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count customers").WithDetails(err.Error())
	}
	return count, nil
}

func (r *customerRepository) CountActive() (int64, error) {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM customers WHERE active`).Scan(&count); err != nil {
		return 0, errors.NewAppError(errors.StorageFailure, "failed to count active customers").WithDetails(err.Error())
	}
	return count, nil
}
