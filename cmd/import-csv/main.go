package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"houseoflove/internal/checkout"
	"houseoflove/pkg/database"
	"houseoflove/pkg/models"
	"houseoflove/pkg/utils"
)

// importedProfile owns restored orders; the export does not carry profiles.
const importedProfile = "import"

func main() {
	var (
		ordersIn = flag.String("orders", "data/orders.csv", "input CSV path for orders")
		itemsIn  = flag.String("items", "data/order_items.csv", "input CSV path for order lines")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := utils.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db := database.MustOpen(database.ConfigFor(cfg.Storage.DBPath))
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	orders, err := readFiles(*ordersIn, *itemsIn)
	if err != nil {
		log.Fatalf("read csv failed: %v", err)
	}

	repo := checkout.NewRepo(db)
	imported, skipped := 0, 0
	for _, o := range orders {
		if _, err := repo.Get(ctx, o.Number); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, checkout.ErrOrderNotFound) {
			log.Fatalf("lookup %s failed: %v", o.Number, err)
		}
		if err := repo.Create(ctx, o); err != nil {
			log.Fatalf("import %s failed: %v", o.Number, err)
		}
		imported++
	}

	log.Printf("✅ imported %d orders from %s (%d already present)", imported, *ordersIn, skipped)
}

func readFiles(ordersPath, itemsPath string) ([]models.Order, error) {
	of, err := os.Open(ordersPath)
	if err != nil {
		return nil, err
	}
	defer of.Close()

	itf, err := os.Open(itemsPath)
	if err != nil {
		return nil, err
	}
	defer itf.Close()

	return readOrders(of, itf)
}

// readOrders parses the two files written by export-csv. Lines are attached
// to their order in file order; a line for an unknown order is an error.
func readOrders(ordersCSV, itemsCSV io.Reader) ([]models.Order, error) {
	r := csv.NewReader(ordersCSV)
	r.FieldsPerRecord = -1
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	index := map[string]int{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		number := valueAt(header, row, "order_number")
		if number == "" {
			continue
		}
		total, err := decimal.NewFromString(valueAt(header, row, "total"))
		if err != nil {
			return nil, fmt.Errorf("parse total for %s: %w", number, err)
		}
		created, err := parseTime(valueAt(header, row, "created_at"))
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", number, err)
		}
		index[number] = len(orders)
		orders = append(orders, models.Order{
			Number:        number,
			UserID:        valueAt(header, row, "user_id"),
			ProfileID:     importedProfile,
			CustomerName:  valueAt(header, row, "customer_name"),
			CustomerEmail: valueAt(header, row, "customer_email"),
			Total:         total,
			CreatedAt:     created,
		})
	}

	r = csv.NewReader(itemsCSV)
	r.FieldsPerRecord = -1
	header, err = readHeader(r)
	if err != nil {
		return nil, err
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		number := valueAt(header, row, "order_number")
		if number == "" {
			continue
		}
		i, ok := index[number]
		if !ok {
			return nil, fmt.Errorf("line for unknown order %s", number)
		}
		it, err := parseItem(header, row)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", number, err)
		}
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, nil
}

func parseItem(header map[string]int, row []string) (models.CartItem, error) {
	price, err := decimal.NewFromString(valueAt(header, row, "price"))
	if err != nil {
		return models.CartItem{}, fmt.Errorf("parse price: %w", err)
	}
	qty, err := strconv.Atoi(valueAt(header, row, "quantity"))
	if err != nil {
		return models.CartItem{}, fmt.Errorf("parse quantity: %w", err)
	}
	it := models.CartItem{
		ID:       valueAt(header, row, "item_id"),
		Kind:     valueAt(header, row, "kind"),
		Name:     valueAt(header, row, "name"),
		Price:    price,
		Image:    valueAt(header, row, "image"),
		Quantity: qty,
	}
	if raw := valueAt(header, row, "customization"); raw != "" {
		var b models.BookCustomization
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return models.CartItem{}, fmt.Errorf("parse customization for %s: %w", it.ID, err)
		}
		it.Book = &b
	}
	return it, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}
