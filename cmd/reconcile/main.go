// Command reconcile checks every account balance against its transactions
// and, with -fix, rewrites the balances that drifted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/ledger"
	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// errDrift is returned when drift was found and left in place.
var errDrift = errors.New("balances drifted from their transactions")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fix := fs.Bool("fix", false, "Rewrite drifting balances")
	sqlitePath := fs.String("db", "", "SQLite database file (default: database from the environment)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.FromEnv()
	if *sqlitePath != "" {
		cfg.DBDriver = database.DriverSQLite
		cfg.SQLitePath = *sqlitePath
	}
	logger.Init(cfg.Env, "warn")

	mgr, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer mgr.Close()

	report, err := services.NewLedgerService(mgr.DB()).Reconcile(context.Background(), *fix)
	if err != nil {
		return err
	}

	printReport(stdout, report)

	if len(report.Drifts) > 0 && !*fix {
		return errDrift
	}
	return nil
}

func printReport(w io.Writer, report *ledger.ReconcileReport) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	for _, d := range report.Drifts {
		status := red.Sprint("DRIFT")
		if d.Fixed {
			status = yellow.Sprint("FIXED")
		}
		fmt.Fprintf(w, "%s account %d (%s, user %d): recorded %s, expected %s, difference %s\n",
			status, d.AccountID, d.Name, d.UserID,
			d.Recorded.StringFixed(2), d.Expected.StringFixed(2), d.Difference.StringFixed(2))
	}

	if len(report.Drifts) == 0 {
		green.Fprintf(w, "OK %d account(s) checked, no drift\n", report.AccountsChecked)
		return
	}
	fmt.Fprintf(w, "%d account(s) checked, %d drifted\n", report.AccountsChecked, len(report.Drifts))
}
