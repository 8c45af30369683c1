package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"arena-ledger/cmd"
	"arena-ledger/database"
	"arena-ledger/domain/entities"
	"arena-ledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Check for admin credit subcommand
	if len(os.Args) > 1 && os.Args[1] == "credit" {
		if err := handleCreditCommand(); err != nil {
			log.Fatal("Credit error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: arena migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleCreditCommand applies a manual credit: arena credit account amount currency reference
func handleCreditCommand() error {
	if len(os.Args) < 6 {
		return fmt.Errorf("usage: arena credit account amount cash|coin reference")
	}
	amount, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", os.Args[3], err)
	}

	result, err := cmd.CreditAccount(context.Background(), interfaces.LedgerRequest{
		AccountID:   os.Args[2],
		Amount:      amount,
		Currency:    entities.Currency(os.Args[4]),
		Reference:   os.Args[5],
		Description: "Manual adjustment",
		Metadata:    map[string]any{"admin": "true"},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account":       result.Transaction.AccountID,
		"balanceBefore": result.Transaction.BalanceBefore,
		"balanceAfter":  result.Transaction.BalanceAfter,
		"replayed":      result.Replayed,
	}).Info("Credit applied")
	return nil
}
