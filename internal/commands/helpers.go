package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hwalton/gdrivetoolbox/auth"
	"github.com/hwalton/gdrivetoolbox/deploy"
	"github.com/jackc/pgx/v5"

	"github.com/abstract-tutoring/card-crafter/models"
	"github.com/abstract-tutoring/card-crafter/services"
	"github.com/abstract-tutoring/card-crafter/store"
)

func connectDB(ctx context.Context, dbURL string) (*pgx.Conn, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("db url missing")
	}
	return pgx.Connect(ctx, dbURL)
}

func lookupEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%s not set", key)
	}
	return v, nil
}

func databaseURL(isProd bool) (string, error) {
	if isProd {
		return lookupEnv("PROD_DATABASE_URL")
	}
	return lookupEnv("DEV_DATABASE_URL")
}

func driveFolder(isProd bool) (string, error) {
	if isProd {
		return lookupEnv("PROD_GDRIVE_BACKUP_FOLDER_ID")
	}
	return lookupEnv("DEV_GDRIVE_BACKUP_FOLDER_ID")
}

// openStore loads the Collection kept in the Postgres kv_store table.
func openStore(ctx context.Context, isProd bool) (*store.Store, func(), error) {
	dbURL, err := databaseURL(isProd)
	if err != nil {
		return nil, nil, err
	}
	backend, err := store.NewPostgresBackend(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	st := store.New(backend, models.DefaultStorageKey)
	st.Load(ctx)
	return st, backend.Close, nil
}

func loadGroupsFile(path string) (models.Collection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read groups file: %w", err)
	}
	var groups models.Collection
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("invalid groups json: %w", err)
	}
	for i, g := range groups {
		if g.Group == "" {
			return nil, fmt.Errorf("group %d has no name", i)
		}
	}
	return groups, nil
}

func writeGroupsFile(path string, groups models.Collection) error {
	raw, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write groups file: %w", err)
	}
	return nil
}

// importGroups merges each group in order, so duplicates inside the file merge too.
func importGroups(ctx context.Context, st *store.Store, groups models.Collection) (int, error) {
	for i, g := range groups {
		if _, err := st.AddOrMergeGroup(ctx, g); err != nil {
			return i, fmt.Errorf("merge group %q: %w", g.Group, err)
		}
	}
	return len(groups), nil
}

func exportGroupPDF(ctx context.Context, st *store.Store, images *services.ImageLoader, index int, out string) (int, error) {
	group, ok := st.Group(index)
	if !ok {
		return 0, fmt.Errorf("group %d: %w", index, store.ErrGroupNotFound)
	}

	doc, err := services.NewExporter(images).Export(ctx, group)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := doc.Output(f); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return doc.Pages(), nil
}

func uploadToDrive(isProd bool, file string) (string, error) {
	folder, err := driveFolder(isProd)
	if err != nil {
		return "", err
	}
	clientID, err := lookupEnv("GOOGLE_CLIENT_ID")
	if err != nil {
		return "", err
	}
	clientSecret, err := lookupEnv("GOOGLE_CLIENT_SECRET")
	if err != nil {
		return "", err
	}
	refreshToken, err := lookupEnv("GOOGLE_REFRESH_TOKEN")
	if err != nil {
		return "", err
	}

	accessToken, err := auth.GetGoogleAccessToken(clientID, clientSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("get drive access token: %w", err)
	}

	fileID, err := deploy.UploadFileToDrive(accessToken, folder, file)
	if err != nil {
		return "", fmt.Errorf("upload to drive: %w", err)
	}
	return fileID, nil
}
