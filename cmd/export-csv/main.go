package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"houseoflove/internal/checkout"
	"houseoflove/pkg/database"
	"houseoflove/pkg/models"
	"houseoflove/pkg/utils"
)

func main() {
	var (
		ordersOut = flag.String("orders", "data/orders.csv", "output CSV path for orders")
		itemsOut  = flag.String("items", "data/order_items.csv", "output CSV path for order lines")
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

	orders, err := checkout.NewRepo(db).List(ctx)
	if err != nil {
		log.Fatalf("list orders failed: %v", err)
	}

	if err := writeFile(*ordersOut, func(w io.Writer) error { return exportOrders(w, orders) }); err != nil {
		log.Fatalf("export orders failed: %v", err)
	}
	if err := writeFile(*itemsOut, func(w io.Writer) error { return exportItems(w, orders) }); err != nil {
		log.Fatalf("export order items failed: %v", err)
	}

	log.Printf("✅ exported %d orders to %s and their lines to %s", len(orders), *ordersOut, *itemsOut)
}

func writeFile(outPath string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func exportOrders(out io.Writer, orders []models.Order) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"order_number", "user_id", "customer_name", "customer_email", "items", "total", "created_at"}); err != nil {
		return err
	}
	for _, o := range orders {
		if err := w.Write([]string{
			o.Number,
			o.UserID,
			o.CustomerName,
			o.CustomerEmail,
			strconv.Itoa(len(o.Items)),
			o.Total.StringFixed(2),
			o.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportItems(out io.Writer, orders []models.Order) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"order_number", "item_id", "kind", "name", "price", "quantity", "line_total", "image", "customization"}); err != nil {
		return err
	}
	for _, o := range orders {
		for _, it := range o.Items {
			custom := ""
			if it.Book != nil {
				b, err := json.Marshal(it.Book)
				if err != nil {
					return err
				}
				custom = string(b)
			}
			if err := w.Write([]string{
				o.Number,
				it.ID,
				it.Kind,
				it.Name,
				it.Price.StringFixed(2),
				strconv.Itoa(it.Quantity),
				it.LineTotal().StringFixed(2),
				it.Image,
				custom,
			}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
