package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/hwalton/psqltoolbox"

	"github.com/abstract-tutoring/card-crafter/services"
)

const migrationsPath = "../../migrations"

func ImportGroups(path string, isProd bool) error {
	groups, err := loadGroupsFile(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, closeStore, err := openStore(ctx, isProd)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := importGroups(ctx, st, groups)
	if err != nil {
		return fmt.Errorf("imported %d of %d groups: %w", n, len(groups), err)
	}

	fmt.Printf("merged %d groups, collection now has %d groups\n", n, len(st.Groups()))
	return nil
}

func ExportGroups(path string, isProd bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, closeStore, err := openStore(ctx, isProd)
	if err != nil {
		return err
	}
	defer closeStore()

	groups := st.Groups()
	if err := writeGroupsFile(path, groups); err != nil {
		return err
	}

	fmt.Printf("exported %d groups to %s\n", len(groups), path)
	return nil
}

func ExportPDF(index int, out string, isProd bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	st, closeStore, err := openStore(ctx, isProd)
	if err != nil {
		return err
	}
	defer closeStore()

	images := services.NewImageLoader(nil, 10*time.Second)
	pages, err := exportGroupPDF(ctx, st, images, index, out)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d pages to %s\n", pages, out)
	return nil
}

func DeleteGroup(index int, isProd bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, closeStore, err := openStore(ctx, isProd)
	if err != nil {
		return err
	}
	defer closeStore()

	group, _ := st.Group(index)
	if _, err := st.DeleteGroup(ctx, index); err != nil {
		return err
	}

	fmt.Printf("deleted group %d (%s)\n", index, group.Group)
	return nil
}

func ResetDBDev() error {
	dbURL, err := databaseURL(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := connectDB(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			log.Printf("warning: failed to close db connection: %v", cerr)
		}
	}()

	// drops every table, kv_store included, then migrates up again
	if err := psqltoolbox.DropTablesAndMigrate(ctx, conn, dbURL, migrationsPath); err != nil {
		return err
	}

	return nil
}

func RunMigrationsUp(isProd bool) error {
	dbURL, err := databaseURL(isProd)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] Running DB migrations from %s...\n", time.Now().Format(time.RFC3339), migrationsPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, "migrate", "-database", dbURL, "-path", migrationsPath, "up")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("migrate up failed: %w", err)
	}

	fmt.Printf("[%s] Migrations applied.\n", time.Now().Format(time.RFC3339))
	return nil
}

func ExecSQL(sqlInput string, isProd bool) error {
	dbURL, err := databaseURL(isProd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := connectDB(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			log.Printf("warning: failed to close db connection: %v", cerr)
		}
	}()

	tag, err := conn.Exec(ctx, sqlInput)
	if err != nil {
		return fmt.Errorf("execute SQL: %w", err)
	}

	fmt.Printf("SQL executed successfully (%d rows affected).\n", tag.RowsAffected())
	return nil
}

func BackupDB(isProd bool) error {
	dbURL, err := databaseURL(isProd)
	if err != nil {
		return err
	}

	backupFile := fmt.Sprintf("backup_%s.dump", time.Now().Format("2006-01-02_15-04-05"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := psqltoolbox.PgDumpToFile(ctx, dbURL, backupFile, 15*time.Minute); err != nil {
		_ = os.Remove(backupFile)
		return fmt.Errorf("pg_dump failed: %w", err)
	}
	defer func() { _ = os.Remove(backupFile) }()

	fileID, err := uploadToDrive(isProd, backupFile)
	if err != nil {
		return err
	}

	fmt.Printf("Backup uploaded to Google Drive with file ID: %s\n", fileID)
	return nil
}

// BackupCollection uploads the Collection as indented JSON, the same shape import-groups reads.
func BackupCollection(isProd bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, closeStore, err := openStore(ctx, isProd)
	if err != nil {
		return err
	}
	defer closeStore()

	backupFile := fmt.Sprintf("flashcards_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	if err := writeGroupsFile(backupFile, st.Groups()); err != nil {
		return err
	}
	defer func() { _ = os.Remove(backupFile) }()

	fileID, err := uploadToDrive(isProd, backupFile)
	if err != nil {
		return err
	}

	fmt.Printf("Collection backup uploaded to Google Drive with file ID: %s\n", fileID)
	return nil
}
