package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// schema espelha as tabelas usadas pelo serviço de estoque
const schema = `
CREATE TABLE IF NOT EXISTS items (
	id          UUID PRIMARY KEY,
	code        VARCHAR(50) NOT NULL UNIQUE,
	name        VARCHAR(255) NOT NULL,
	quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	price       NUMERIC(12,2) NOT NULL DEFAULT 0,
	price_usd   NUMERIC(12,2) NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	information TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS inventory_movements (
	id              UUID PRIMARY KEY,
	item_id         UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	change_quantity INTEGER NOT NULL,
	movement_type   VARCHAR(10) NOT NULL CHECK (movement_type IN ('in', 'out')),
	request_id      VARCHAR(100),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_movements_item_id ON inventory_movements(item_id);
CREATE INDEX IF NOT EXISTS idx_movements_created_at ON inventory_movements(created_at);
CREATE INDEX IF NOT EXISTS idx_items_code ON items(code);
`

type seedItem struct {
	code     string
	name     string
	quantity int
	price    string
	priceUSD string
}

var seedItems = []seedItem{
	{"BRG-6204", "Bearing 6204-2RS", 120, "18500.00", "1.15"},
	{"BLT-M8-40", "Hex Bolt M8x40", 500, "1200.00", "0.08"},
	{"NUT-M8", "Hex Nut M8", 650, "500.00", "0.03"},
	{"SPK-NGK7", "Spark Plug NGK BPR7", 80, "32000.00", "2.00"},
	{"FLT-OIL-01", "Oil Filter C-1102", 45, "55000.00", "3.40"},
	{"BLT-V-A42", "V-Belt A42", 30, "27000.00", "1.70"},
	{"GSK-HEAD-5K", "Head Gasket 5K", 12, "145000.00", "9.00"},
	{"WSH-8MM", "Flat Washer 8mm", 900, "200.00", "0.01"},
}

func main() {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_NAME", "inventory_db"),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	// Aguardar o banco ficar disponível
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("❌ Database not reachable: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("❌ Failed to create schema: %v", err)
	}
	log.Println("✅ Schema ready")

	inserted := 0
	for _, item := range seedItems {
		result, err := db.Exec(`
			INSERT INTO items (id, code, name, quantity, price, price_usd, description, information)
			VALUES ($1, $2, $3, $4, $5, $6, '', '')
			ON CONFLICT (code) DO NOTHING`,
			uuid.New().String(), item.code, item.name, item.quantity, item.price, item.priceUSD,
		)
		if err != nil {
			log.Fatalf("❌ Failed to insert item %s: %v", item.code, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	log.Printf("✅ Seed complete: %d new items (%d total in seed set)", inserted, len(seedItems))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
