package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"houseoflove/pkg/models"
)

var ErrOrderNotFound = errors.New("order not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create stores the order and its lines in one transaction.
func (r *Repo) Create(ctx context.Context, o models.Order) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var userID any
	if o.UserID != "" {
		userID = o.UserID
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO orders (number, user_id, profile_id, customer_name, customer_email, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, o.Number, userID, o.ProfileID, o.CustomerName, o.CustomerEmail, o.Total.String(), o.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		var custom any
		if it.Book != nil {
			b, merr := json.Marshal(it.Book)
			if merr != nil {
				err = fmt.Errorf("encode customization: %w", merr)
				return err
			}
			custom = string(b)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_number, position, item_id, kind, name, price, quantity, image, customization)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, o.Number, i, it.ID, it.Kind, it.Name, it.Price.String(), it.Quantity, it.Image, custom); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (models.Order, error) {
	var (
		o      models.Order
		userID sql.NullString
		total  string
	)
	if err := s.Scan(&o.Number, &userID, &o.ProfileID, &o.CustomerName, &o.CustomerEmail, &total, &o.CreatedAt); err != nil {
		return o, err
	}
	o.UserID = userID.String
	d, err := decimal.NewFromString(total)
	if err != nil {
		return o, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.Total = d
	return o, nil
}

const orderColumns = `number, user_id, profile_id, customer_name, customer_email, total, created_at`

func (r *Repo) Get(ctx context.Context, number string) (*models.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.Number); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, with the total count.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, number
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := r.collect(ctx, rows)
	return orders, total, err
}

// List returns every order, oldest first. The CSV export reads it.
func (r *Repo) List(ctx context.Context) ([]models.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, number`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *Repo) collect(ctx context.Context, rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	// lines are loaded after the cursor is closed; sqlite pools may hold one conn
	for i := range orders {
		items, err := r.items(ctx, orders[i].Number)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *Repo) items(ctx context.Context, number string) ([]models.CartItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT item_id, kind, name, price, quantity, image, customization
		FROM order_items
		WHERE order_number = ?
		ORDER BY position
	`, number)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var (
			it     models.CartItem
			price  string
			image  sql.NullString
			custom sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Kind, &it.Name, &price, &it.Quantity, &image, &custom); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		it.Image = image.String
		if custom.Valid && custom.String != "" {
			var b models.BookCustomization
			if err := json.Unmarshal([]byte(custom.String), &b); err != nil {
				return nil, fmt.Errorf("decode customization: %w", err)
			}
			it.Book = &b
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
