package domain

// Store groups the repositories behind a single unit-of-work boundary. WithTx
// runs fn against a store whose repositories share one database transaction;
// fn returning an error rolls everything back.
type Store interface {
	Customers() CustomerRepository
	Accounts() AccountRepository
	Transactions() TransactionRepository
	WithTx(fn func(Store) error) error
}
