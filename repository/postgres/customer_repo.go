package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
)

const customerColumns = `
	id, phone, name, email, street, city, state, zip_code, birthday,
	total_spent, order_count, last_purchase, products, status,
	days_since_purchase, provenance, created_at, updated_at`

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation of CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) repository.CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	// KeepBoth resolutions may leave two records on one phone; the most
	// recently updated one wins for point lookups.
	const query = `SELECT ` + customerColumns + `
	FROM customers
	WHERE phone = $1
	ORDER BY updated_at DESC
	LIMIT 1`
	return scanCustomer(r.pool.QueryRow(ctx, query, phone))
}

func (r *customerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func (r *customerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	const query = `SELECT ` + customerColumns + `
	FROM customers
	WHERE ($1 = '' OR status = $1)
	ORDER BY updated_at DESC
	LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func (r *customerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	customer.Touch()

	const query = `
	INSERT INTO customers (
		id, phone, name, email, street, city, state, zip_code, birthday,
		total_spent, order_count, last_purchase, products, status,
		days_since_purchase, provenance, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (id) DO UPDATE SET
		phone = EXCLUDED.phone,
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		street = EXCLUDED.street,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		zip_code = EXCLUDED.zip_code,
		birthday = EXCLUDED.birthday,
		total_spent = EXCLUDED.total_spent,
		order_count = EXCLUDED.order_count,
		last_purchase = EXCLUDED.last_purchase,
		products = EXCLUDED.products,
		status = EXCLUDED.status,
		days_since_purchase = EXCLUDED.days_since_purchase,
		provenance = EXCLUDED.provenance,
		updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Phone,
		customer.Name,
		customer.Email,
		customer.Street,
		customer.City,
		customer.State,
		customer.ZipCode,
		customer.Birthday,
		customer.TotalSpent,
		customer.OrderCount,
		customer.LastPurchase,
		marshalJSON(customer.Products),
		string(customer.Status),
		customer.DaysSincePurchase,
		marshalJSON(customer.Provenance),
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	return err
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM customers WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var (
		birthday     *time.Time
		lastPurchase *time.Time
		products     []byte
		provenance   []byte
		status       string
		days         *int
	)

	if err := row.Scan(
		&c.ID,
		&c.Phone,
		&c.Name,
		&c.Email,
		&c.Street,
		&c.City,
		&c.State,
		&c.ZipCode,
		&birthday,
		&c.TotalSpent,
		&c.OrderCount,
		&lastPurchase,
		&products,
		&status,
		&days,
		&provenance,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	c.Birthday = birthday
	c.LastPurchase = lastPurchase
	c.Status = domain.Status(status)
	c.DaysSincePurchase = days
	unmarshalJSON(products, &c.Products)
	unmarshalJSON(provenance, &c.Provenance)

	return &c, nil
}

func collectCustomers(rows pgx.Rows) ([]domain.Customer, error) {
	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}
