package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abstract-tutoring/card-crafter/internal/commands"
)

func usage() {
	fmt.Println("go run main.go <command> [--dev|--prod] [args...]")
	fmt.Println("commands: import-groups, export-groups, export-pdf, delete-group, run-migrations-up,")
	fmt.Println("          reset-db-dev, exec-sql, backup-db, backup-collection")
}

type cmdHandler func([]string) error

func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on environment")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	handlers := map[string]cmdHandler{
		"import-groups":     handleImportGroups,
		"export-groups":     handleExportGroups,
		"export-pdf":        handleExportPDF,
		"delete-group":      handleDeleteGroup,
		"run-migrations-up": handleRunMigrationsUp,
		"reset-db-dev":      handleResetDBDev,
		"exec-sql":          handleExecSQL,
		"backup-db":         handleBackupDB,
		"backup-collection": handleBackupCollection,
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	handler, ok := handlers[cmd]
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", cmd, err)
		os.Exit(1)
	}
}

// parseEnvFlag reads the leading --dev/--prod flag and skips an optional "--" separator.
func parseEnvFlag(args []string) (bool, []string, error) {
	if len(args) < 1 {
		return false, nil, fmt.Errorf("must provide argument --dev or --prod")
	}

	var isProd bool
	switch args[0] {
	case "--dev", "-d":
		isProd = false
	case "--prod", "-p":
		isProd = true
	default:
		return false, nil, fmt.Errorf("must provide argument --dev or --prod")
	}

	rest := args[1:]
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	return isProd, rest, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid group index %q", s)
	}
	return i, nil
}

func handleImportGroups(args []string) error {
	isProd, rest, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: import-groups --dev|--prod <groups.json>")
	}
	return commands.ImportGroups(rest[0], isProd)
}

func handleExportGroups(args []string) error {
	isProd, rest, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: export-groups --dev|--prod <out.json>")
	}
	return commands.ExportGroups(rest[0], isProd)
}

func handleExportPDF(args []string) error {
	isProd, rest, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return fmt.Errorf("usage: export-pdf --dev|--prod <index> <out.pdf>")
	}
	index, err := parseIndex(rest[0])
	if err != nil {
		return err
	}
	return commands.ExportPDF(index, rest[1], isProd)
}

func handleDeleteGroup(args []string) error {
	isProd, rest, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: delete-group --dev|--prod <index>")
	}
	index, err := parseIndex(rest[0])
	if err != nil {
		return err
	}
	return commands.DeleteGroup(index, isProd)
}

func handleRunMigrationsUp(args []string) error {
	isProd, _, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	return commands.RunMigrationsUp(isProd)
}

func handleResetDBDev(args []string) error {
	return commands.ResetDBDev()
}

func handleExecSQL(args []string) error {
	isProd, rest, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("no SQL provided; pass SQL as a positional argument after the env flag")
	}

	// join remaining args to preserve whitespace/newlines if shell split them
	return commands.ExecSQL(strings.Join(rest, " "), isProd)
}

func handleBackupDB(args []string) error {
	isProd, _, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	return commands.BackupDB(isProd)
}

func handleBackupCollection(args []string) error {
	isProd, _, err := parseEnvFlag(args)
	if err != nil {
		return err
	}
	return commands.BackupCollection(isProd)
}
