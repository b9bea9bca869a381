package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/catalog"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/store"
)

const usage = "expected 'add-staff', 'seed-dishes' or 'set-price' subcommand"

func main() {
	addStaffCmd := flag.NewFlagSet("add-staff", flag.ExitOnError)
	username := addStaffCmd.String("username", "", "Username for the kitchen account")
	password := addStaffCmd.String("password", "", "Password for the kitchen account")

	seedCmd := flag.NewFlagSet("seed-dishes", flag.ExitOnError)
	seedFile := seedCmd.String("file", "data/dishes.yaml", "YAML file listing the menu")

	priceCmd := flag.NewFlagSet("set-price", flag.ExitOnError)
	dishID := priceCmd.String("id", "", "Dish ID")
	price := priceCmd.String("price", "", "New price in naira, e.g. 2500")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-staff":
		addStaffCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addStaffCmd.PrintDefaults()
			os.Exit(1)
		}
		createStaff(*username, *password)
	case "seed-dishes":
		seedCmd.Parse(os.Args[2:])
		seedDishes(*seedFile)
	case "set-price":
		priceCmd.Parse(os.Args[2:])
		if *dishID == "" || *price == "" {
			fmt.Println("id and price are required")
			priceCmd.PrintDefaults()
			os.Exit(1)
		}
		setPrice(*dishID, *price)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore opens and migrates the database so the CLI works before the
// server has ever run.
func openStore() *store.Store {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./olas-kitchen.db"
	}
	migrations := os.Getenv("MIGRATIONS_DIR")
	if migrations == "" {
		migrations = "migrations"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Migrate(os.DirFS(migrations)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createStaff(username, password string) {
	db := openStore()
	defer db.Close()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.CreateStaff(context.Background(), username, string(hashedPassword)); err != nil {
		log.Fatalf("Failed to create staff account: %v", err)
	}

	fmt.Printf("Staff account '%s' created successfully.\n", username)
}

func seedDishes(path string) {
	dishes, err := catalog.LoadSeed(path)
	if err != nil {
		log.Fatalf("Failed to read menu: %v", err)
	}

	db := openStore()
	defer db.Close()

	if err := catalog.Seed(context.Background(), db, dishes); err != nil {
		log.Fatalf("Failed to seed menu: %v", err)
	}
	fmt.Printf("Seeded %d dishes from %s.\n", len(dishes), path)
}

func setPrice(id, raw string) {
	amount, err := money.Parse(raw)
	if err != nil {
		log.Fatalf("Invalid price: %v", err)
	}

	db := openStore()
	defer db.Close()

	if err := db.SetDishPrice(context.Background(), id, amount); err != nil {
		log.Fatalf("Failed to update price: %v", err)
	}
	fmt.Printf("Dish %s now costs %s.\n", id, amount)
}
