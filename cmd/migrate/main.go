package main

import (
	"context"
	"flag"
	"log"
	"os"

	"shop-assistant-be/internal/entity"
	"shop-assistant-be/internal/mapper"
	"shop-assistant-be/internal/model"
	"shop-assistant-be/internal/repository/unitofwork"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	seedPath := flag.String("seed", "", "catalog JSON to upsert into products after migrating")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.AssistantSession{},
		&model.AssistantMessage{},
		&model.Product{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes AutoMigrate cannot express
	log.Println("Step 3: Creating Indexes...")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_price ON products (price) WHERE price IS NOT NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_products_in_stock ON products (in_stock) WHERE in_stock;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	// 6. Optional catalog seed
	if *seedPath != "" {
		items, err := catalog.LoadItemsFile(*seedPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		m := mapper.NewAssistantMapper()
		products := make([]*entity.Product, 0, len(items))
		for _, it := range items {
			products = append(products, m.ItemToProduct(it))
		}

		ctx := context.Background()
		uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
		if err := uow.ProductRepository().Upsert(ctx, products); err != nil {
			log.Fatalf("Error: Failed to seed products: %v", err)
		}
		count, _ := uow.ProductRepository().Count(ctx)
		log.Printf("Step 4: Seeded %d products (%d in table)", len(products), count)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
