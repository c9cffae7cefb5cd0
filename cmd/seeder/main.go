// cmd/seeder/main.go
//
// Bulk-imports a card collection from a CSV export. Each row is one finish
// of one card; rows for the same card are grouped and applied as a single
// additive change set, so re-running the seeder increments rather than
// clobbers. Catalog snapshots are resolved through the same service path
// the API uses.
//
// CSV columns: set_code,card_number,finish,quantity,note
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cardvault/cardvault-be/internal/adapters/catalog"
	"github.com/cardvault/cardvault-be/internal/adapters/db"
	"github.com/cardvault/cardvault-be/internal/core/domain"
	"github.com/cardvault/cardvault-be/internal/core/services"
	"github.com/cardvault/cardvault-be/internal/pkg/config"
)

// cardImport is one grouped change set for a single card.
type cardImport struct {
	SetCode    string
	CardNumber string
	Changes    []domain.PendingChange
}

// seederState tracks which cards have been applied so interrupted runs
// resume instead of double-incrementing.
type seederState struct {
	AppliedCards []string  `json:"applied_cards"`
	AppliedCount int       `json:"applied_count"`
	LastUpdate   time.Time `json:"last_update"`
}

func (s *seederState) applied(key string) bool {
	for _, k := range s.AppliedCards {
		if k == key {
			return true
		}
	}
	return false
}

func main() {
	var (
		csvFile   = flag.String("csv", "./collection.csv", "CSV file with the collection export")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse and validate without modifying the database")
		force     = flag.Bool("force", false, "Reapply all cards, ignoring the state file")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	imports, err := loadCSV(*csvFile)
	if err != nil {
		logger.Error("failed to load collection CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("loaded collection export",
		slog.String("file", *csvFile),
		slog.Int("cards", len(imports)))

	ctx := context.Background()

	var collection *services.CollectionService
	if !*dryRun {
		cfg, err := config.Load(logger)
		if err != nil {
			logger.Error("failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		database, err := db.NewDatabase(ctx, &db.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Name,
			SSLMode:         cfg.Database.SSLMode,
			MaxConnections:  5, // Seeder runs alone
			MinConnections:  1,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		cardStore := db.NewCardStore(database, logger)
		catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.RequestTimeout, logger)
		catalogCache := services.NewCatalogCache(catalogClient, cfg.Catalog.SnapshotTTL, logger)
		collection = services.NewCollectionService(cardStore, catalogCache, logger)
	}

	var state seederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	totalApplied := 0
	totalCopies := 0
	var failedCards []string

	for i, imp := range imports {
		key := domain.CardKey(imp.SetCode, imp.CardNumber)

		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(imports), key)

		if !*force && state.applied(key) {
			logger.Info("skipping already applied card", slog.String("card", key))
			continue
		}

		copies := 0
		for _, c := range imp.Changes {
			copies += c.Amount
		}

		if *dryRun {
			fmt.Printf("SUCCESS: [dry-run] %s - %d copies across %d finishes\n", key, copies, len(imp.Changes))
			totalApplied++
			totalCopies += copies
			continue
		}

		_, outcome, err := collection.CreateOrIncrement(ctx, imp.SetCode, imp.CardNumber, imp.Changes)
		if err != nil {
			logger.Error("failed to apply card",
				slog.String("card", key),
				slog.String("error", err.Error()))
			failedCards = append(failedCards, key)
			fmt.Printf("ERROR: Failed to apply %s - %v\n", key, err)
			continue
		}

		fmt.Printf("SUCCESS: Applied %s (%s) - %d copies\n", key, outcome, copies)

		totalApplied++
		totalCopies += copies

		state.AppliedCards = append(state.AppliedCards, key)
		state.AppliedCount = len(state.AppliedCards)
		state.LastUpdate = time.Now()

		// Save state periodically
		if i%10 == 0 {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	if !*dryRun {
		stateData, _ := json.MarshalIndent(state, "", "  ")
		os.WriteFile(*stateFile, stateData, 0644)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📊 SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Cards Applied: %d\n", totalApplied)
	fmt.Printf("Copies Added: %d\n", totalCopies)

	if len(failedCards) > 0 {
		fmt.Printf("\n⚠️  Failed Cards (%d):\n", len(failedCards))
		for _, card := range failedCards {
			fmt.Printf("  - %s\n", card)
		}
	}

	logger.Info("seed operation completed",
		slog.Int("cards_applied", totalApplied),
		slog.Int("copies_added", totalCopies),
		slog.Int("failed_cards", len(failedCards)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

// loadCSV parses the export and groups rows by card, preserving file order.
func loadCSV(path string) ([]cardImport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	byKey := make(map[string]*cardImport)
	var order []string

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		// Skip header
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "set_code") {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line, len(row))
		}

		setCode := strings.TrimSpace(row[0])
		cardNumber := strings.TrimSpace(row[1])
		finish := strings.TrimSpace(row[2])
		if setCode == "" || cardNumber == "" || finish == "" {
			return nil, fmt.Errorf("line %d: set_code, card_number and finish are required", line)
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be a positive integer", line)
		}

		var note string
		if len(row) > 4 {
			note = strings.TrimSpace(row[4])
		}

		key := domain.CardKey(setCode, cardNumber)
		imp, ok := byKey[key]
		if !ok {
			imp = &cardImport{SetCode: setCode, CardNumber: cardNumber}
			byKey[key] = imp
			order = append(order, key)
		}
		imp.Changes = append(imp.Changes, domain.PendingChange{
			Finish: finish,
			Amount: quantity,
			Note:   note,
		})
	}

	imports := make([]cardImport, 0, len(order))
	for _, key := range order {
		imports = append(imports, *byKey[key])
	}
	return imports, nil
}
