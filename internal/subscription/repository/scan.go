// Package repository provides data persistence implementations for subscriptions.
package repository

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const subscriptionColumns = `id, owner_id, name, description, price, currency, frequency, category,
			  payment_method, status, start_date, renewal_date, cancellation_date, created_at, updated_at`
