package service

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-management/internal/domain"
	"bank-management/internal/errors"
)

// fakeStore is an in-memory domain.Store. WithTx snapshots the state before
// running fn and restores it on error, mirroring database rollback semantics.
type fakeStore struct {
	customers    map[uuid.UUID]*domain.Customer
	accounts     map[uuid.UUID]*domain.Account
	transactions []*domain.Transaction

	// balanceUpdateErr, keyed by account id, makes UpdateBalance fail.
	balanceUpdateErr map[uuid.UUID]error

	// customerLookupErr makes GetByEmail and GetByPhone fail.
	customerLookupErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:        make(map[uuid.UUID]*domain.Customer),
		accounts:         make(map[uuid.UUID]*domain.Account),
		balanceUpdateErr: make(map[uuid.UUID]error),
	}
}

func (s *fakeStore) Customers() domain.CustomerRepository {
	return &fakeCustomerRepo{store: s}
}

func (s *fakeStore) Accounts() domain.AccountRepository {
	return &fakeAccountRepo{store: s}
}

func (s *fakeStore) Transactions() domain.TransactionRepository {
	return &fakeTransactionRepo{store: s}
}

func (s *fakeStore) WithTx(fn func(domain.Store) error) error {
	customers := make(map[uuid.UUID]*domain.Customer, len(s.customers))
	for id, c := range s.customers {
		copied := *c
		customers[id] = &copied
	}
	accounts := make(map[uuid.UUID]*domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		copied := *a
		accounts[id] = &copied
	}
	transactions := make([]*domain.Transaction, len(s.transactions))
	copy(transactions, s.transactions)

	if err := fn(s); err != nil {
		s.customers = customers
		s.accounts = accounts
		s.transactions = transactions
		return err
	}
	return nil
}

func (s *fakeStore) addAccount(balance string) *domain.Account {
	account := &domain.Account{
		ID:             uuid.New(),
		CustomerID:     uuid.New(),
		AccountNumber:  "12345678",
		Type:           domain.AccountTypeChecking,
		Balance:        mustDecimal(balance),
		OpeningBalance: mustDecimal(balance),
		InterestRate:   decimal.Zero,
		Status:         domain.AccountStatusActive,
		CreatedAt:      time.Now(),
	}
	s.accounts[account.ID] = account
	return account
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeAccountRepo struct {
	store *fakeStore
}

func (r *fakeAccountRepo) Create(account *domain.Account) error {
	for _, existing := range r.store.accounts {
		if existing.AccountNumber == account.AccountNumber {
			return errors.ErrDuplicateAccount
		}
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	r.store.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) Get(id uuid.UUID) (*domain.Account, error) {
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetForUpdate(id uuid.UUID) (*domain.Account, error) {
	return r.Get(id)
}

func (r *fakeAccountRepo) Exists(id uuid.UUID) (bool, error) {
	_, ok := r.store.accounts[id]
	return ok, nil
}

func (r *fakeAccountRepo) List() ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *fakeAccountRepo) Update(account *domain.Account) error {
	existing, ok := r.store.accounts[account.ID]
	if !ok {
		return errors.ErrAccountNotFound
	}
	for _, other := range r.store.accounts {
		if other.ID != account.ID && other.AccountNumber == account.AccountNumber {
			return errors.ErrDuplicateAccount
		}
	}
	copied := *account
	copied.OpeningBalance = existing.OpeningBalance
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	r.store.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) UpdateBalance(id uuid.UUID, balance decimal.Decimal) error {
	if err := r.store.balanceUpdateErr[id]; err != nil {
		return err
	}
	account, ok := r.store.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	account.Balance = balance
	account.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAccountRepo) Delete(id uuid.UUID) error {
	if _, ok := r.store.accounts[id]; !ok {
		return errors.ErrAccountNotFound
	}
	delete(r.store.accounts, id)
	return nil
}

func (r *fakeAccountRepo) Count() (int64, error) {
	return int64(len(r.store.accounts)), nil
}

func (r *fakeAccountRepo) CountByStatus(status domain.AccountStatus) (int64, error) {
	var count int64
	for _, account := range r.store.accounts {
		if account.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeAccountRepo) TotalActiveBalance() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, account := range r.store.accounts {
		if account.Status == domain.AccountStatusActive {
			total = total.Add(account.Balance)
		}
	}
	return total, nil
}

type fakeTransactionRepo struct {
	store *fakeStore
}

func (r *fakeTransactionRepo) Create(tx *domain.Transaction) error {
	tx.CreatedAt = time.Now()
	copied := *tx
	r.store.transactions = append(r.store.transactions, &copied)
	return nil
}

func (r *fakeTransactionRepo) Get(id uuid.UUID) (*domain.Transaction, error) {
	for _, tx := range r.store.transactions {
		if tx.ID == id {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, errors.NewAppError(errors.EntityNotFound, "transaction not found")
}

func (r *fakeTransactionRepo) List() ([]*domain.Transaction, error) {
	transactions := make([]*domain.Transaction, len(r.store.transactions))
	copy(transactions, r.store.transactions)
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionDate.After(transactions[j].TransactionDate)
	})
	return transactions, nil
}

func (r *fakeTransactionRepo) ListForAccount(accountID uuid.UUID) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for _, tx := range r.store.transactions {
		touches := tx.AccountID == accountID ||
			(tx.DestinationAccountID != nil && *tx.DestinationAccountID == accountID)
		if touches {
			copied := *tx
			transactions = append(transactions, &copied)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].TransactionDate.Equal(transactions[j].TransactionDate) {
			return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
		}
		return transactions[i].TransactionDate.Before(transactions[j].TransactionDate)
	})
	return transactions, nil
}

func (r *fakeTransactionRepo) Delete(id uuid.UUID) error {
	for i, tx := range r.store.transactions {
		if tx.ID == id {
			r.store.transactions = append(r.store.transactions[:i], r.store.transactions[i+1:]...)
			return nil
		}
	}
	return errors.NewAppError(errors.EntityNotFound, "transaction not found")
}

func (r *fakeTransactionRepo) Count() (int64, error) {
	return int64(len(r.store.transactions)), nil
}

func (r *fakeTransactionRepo) CountAfter(t time.Time) (int64, error) {
	var count int64
	for _, tx := range r.store.transactions {
		if tx.TransactionDate.After(t) {
			count++
		}
	}
	return count, nil
}

type fakeCustomerRepo struct {
	store *fakeStore
}

func (r *fakeCustomerRepo) Create(customer *domain.Customer) error {
	for _, existing := range r.store.customers {
		if existing.Email == customer.Email || existing.Phone == customer.Phone {
			return errors.NewAppError(errors.CustomerConflict, "customer with this email or phone already exists")
		}
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt
	copied := *customer
	r.store.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Get(id uuid.UUID) (*domain.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, errors.NewAppError(errors.EntityNotFound, "customer not found")
	}
	copied := *customer
	return &copied, nil
}

func (r *fakeCustomerRepo) GetByEmail(email string) (*domain.Customer, error) {
	if r.store.customerLookupErr != nil {
		return nil, r.store.customerLookupErr
	}
	for _, customer := range r.store.customers {
		if customer.Email == email {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, errors.NewAppError(errors.EntityNotFound, "customer not found")
}

func (r *fakeCustomerRepo) GetByPhone(phone string) (*domain.Customer, error) {
	if r.store.customerLookupErr != nil {
		return nil, r.store.customerLookupErr
	}
	for _, customer := range r.store.customers {
		if customer.Phone == phone {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, errors.NewAppError(errors.EntityNotFound, "customer not found")
}

func (r *fakeCustomerRepo) List() ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0, len(r.store.customers))
	for _, customer := range r.store.customers {
		copied := *customer
		customers = append(customers, &copied)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.Before(customers[j].CreatedAt)
	})
	return customers, nil
}

func (r *fakeCustomerRepo) ListActive() ([]*domain.Customer, error) {
	all, _ := r.List()
	var active []*domain.Customer
	for _, customer := range all {
		if customer.Active {
			active = append(active, customer)
		}
	}
	return active, nil
}

func (r *fakeCustomerRepo) SearchByName(name string) ([]*domain.Customer, error) {
	all, _ := r.List()
	needle := strings.ToLower(name)
	var matched []*domain.Customer
	for _, customer := range all {
		if strings.Contains(strings.ToLower(customer.FirstName), needle) ||
			strings.Contains(strings.ToLower(customer.LastName), needle) {
			matched = append(matched, customer)
		}
	}
	return matched, nil
}

func (r *fakeCustomerRepo) Update(customer *domain.Customer) error {
	existing, ok := r.store.customers[customer.ID]
	if !ok {
		return errors.NewAppError(errors.EntityNotFound, "customer not found")
	}
	for _, other := range r.store.customers {
		if other.ID != customer.ID && (other.Email == customer.Email || other.Phone == customer.Phone) {
			return errors.NewAppError(errors.CustomerConflict, "customer with this email or phone already exists")
		}
	}
	copied := *customer
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	r.store.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) SetActive(id uuid.UUID, active bool) error {
	customer, ok := r.store.customers[id]
	if !ok {
		return errors.NewAppError(errors.EntityNotFound, "customer not found")
	}
	customer.Active = active
	customer.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCustomerRepo) Delete(id uuid.UUID) error {
	if _, ok := r.store.customers[id]; !ok {
		return errors.NewAppError(errors.EntityNotFound, "customer not found")
	}
	delete(r.store.customers, id)
	return nil
}

func (r *fakeCustomerRepo) ExistsByEmail(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	return err == nil, nil
}

func (r *fakeCustomerRepo) ExistsByPhone(phone string) (bool, error) {
	_, err := r.GetByPhone(phone)
	return err == nil, nil
}

func (r *fakeCustomerRepo) Count() (int64, error) {
	return int64(len(r.store.customers)), nil
}

func (r *fakeCustomerRepo) CountActive() (int64, error) {
	var count int64
	for _, customer := range r.store.customers {
		if customer.Active {
			count++
		}
	}
	return count, nil
}

// rowLockStore wraps fakeStore with an advisory account-row lock so tests can
// interleave work with a transaction in flight. GetForUpdate inside WithTx
// takes the lock; it is released when the transaction ends. tryLock tells a
// hook whether some transaction currently holds the rows.
type rowLockStore struct {
	*fakeStore
	lock chan struct{}

	// listHook runs before a tx-scoped ListForAccount, lockHook before a
	// tx-scoped GetForUpdate.
	listHook func()
	lockHook func()
}

func newRowLockStore() *rowLockStore {
	return &rowLockStore{
		fakeStore: newFakeStore(),
		lock:      make(chan struct{}, 1),
	}
}

func (s *rowLockStore) tryLock() bool {
	select {
	case s.lock <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *rowLockStore) unlock() {
	<-s.lock
}

func (s *rowLockStore) WithTx(fn func(domain.Store) error) error {
	tx := &rowLockTx{store: s}
	err := s.fakeStore.WithTx(func(inner domain.Store) error {
		tx.inner = inner
		return fn(tx)
	})
	tx.release()
	return err
}

type rowLockTx struct {
	store *rowLockStore
	inner domain.Store
	held  bool
}

func (t *rowLockTx) acquire() {
	if !t.held {
		t.store.lock <- struct{}{}
		t.held = true
	}
}

func (t *rowLockTx) release() {
	if t.held {
		t.store.unlock()
		t.held = false
	}
}

func (t *rowLockTx) Customers() domain.CustomerRepository {
	return t.inner.Customers()
}

func (t *rowLockTx) Accounts() domain.AccountRepository {
	return &lockTrackingAccountRepo{t.inner.Accounts(), t}
}

func (t *rowLockTx) Transactions() domain.TransactionRepository {
	return &hookedTransactionRepo{t.inner.Transactions(), t}
}

func (t *rowLockTx) WithTx(fn func(domain.Store) error) error {
	return t.inner.WithTx(fn)
}

type lockTrackingAccountRepo struct {
	domain.AccountRepository
	tx *rowLockTx
}

func (r *lockTrackingAccountRepo) GetForUpdate(id uuid.UUID) (*domain.Account, error) {
	if r.tx.store.lockHook != nil {
		r.tx.store.lockHook()
	}
	r.tx.acquire()
	return r.AccountRepository.GetForUpdate(id)
}

type hookedTransactionRepo struct {
	domain.TransactionRepository
	tx *rowLockTx
}

func (r *hookedTransactionRepo) ListForAccount(accountID uuid.UUID) ([]*domain.Transaction, error) {
	if r.tx.store.listHook != nil {
		r.tx.store.listHook()
	}
	return r.TransactionRepository.ListForAccount(accountID)
}
