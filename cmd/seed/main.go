// Command seed prepares the database schema and optionally loads a sample
// workspace for local development.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"arbor/internal/config"
	"arbor/internal/domain/services"
	"arbor/internal/mirror"
	"arbor/internal/repository/postgres"
	"arbor/internal/service/folders"
	"arbor/internal/service/hierarchy"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed sample data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" && *dropTables {
		log.Fatal("refusing to drop tables in the prod environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("dropping tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("failed to drop tables: %v", err)
		}
	}

	log.Printf("ensuring schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("failed to run schema: %v", err)
	}

	if err := ensureWorkspace(ctx, pool, tables, cfg.DefaultWorkspace); err != nil {
		log.Fatalf("failed to ensure workspace: %v", err)
	}

	if *schemaOnly {
		log.Println("schema ready")
		return
	}

	if err := seedSampleFolders(ctx, pool, tables, cfg, logger); err != nil {
		log.Fatalf("failed to seed folders: %v", err)
	}
	log.Println("seeding complete")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createWorkspaces := `
		CREATE TABLE IF NOT EXISTS ` + tables.Workspaces + ` (
			name TEXT PRIMARY KEY,
			created TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createWorkspaces); err != nil {
		return err
	}

	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace TEXT NOT NULL REFERENCES ` + tables.Workspaces + `(name) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			icon TEXT,
			icon_color TEXT,
			kanban BOOLEAN NOT NULL DEFAULT FALSE,
			created TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(workspace, parent_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	createNotes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workspace TEXT NOT NULL REFERENCES ` + tables.Workspaces + `(name) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			folder TEXT NOT NULL DEFAULT '',
			heading TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'markdown',
			tags TEXT NOT NULL DEFAULT '',
			favorite BOOLEAN NOT NULL DEFAULT FALSE,
			trash BOOLEAN NOT NULL DEFAULT FALSE,
			created TIMESTAMPTZ DEFAULT NOW(),
			updated TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createNotes); err != nil {
		return err
	}

	// The UNIQUE constraint above does not cover root folders because
	// Postgres treats NULL parent_ids as distinct; this partial index does.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_root_unique ON ` + tables.Folders + `(workspace, name) WHERE parent_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_workspace_parent ON ` + tables.Folders + `(workspace, parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_workspace_folder ON ` + tables.Notes + `(workspace, folder_id)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}
	return nil
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.Notes, tables.Folders, tables.Workspaces} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}

func ensureWorkspace(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, name string) error {
	_, err := pool.Exec(ctx,
		"INSERT INTO "+tables.Workspaces+" (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	return err
}

// seedSampleFolders creates a small starter tree through the real service
// so paths, uniqueness and the mirror all get exercised
func seedSampleFolders(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, cfg *config.Config, logger *slog.Logger) error {
	repoCfg := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	folderRepo := postgres.NewFolderRepository(repoCfg)
	noteStore := postgres.NewNoteStore(repoCfg)
	workspaceReg := postgres.NewWorkspaceRegistry(repoCfg)
	txManager := postgres.NewTransactionManager(pool)

	resolver := hierarchy.NewResolver(folderRepo)
	reassigner := folders.NewNoteReassigner(noteStore, cfg.DefaultFolderName, logger)
	svc := folders.NewService(folderRepo, workspaceReg, resolver, reassigner,
		txManager, mirror.New(cfg.DataDir, logger), cfg.DefaultFolderName, logger)

	roots := []string{cfg.DefaultFolderName, "Projects", "Archive"}
	var projectsID string
	for _, name := range roots {
		folder, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
			Workspace: cfg.DefaultWorkspace,
			Name:      name,
		})
		if err != nil {
			// Re-running the seed against an existing tree is fine.
			existing, lookupErr := folderRepo.GetByNameAndParent(ctx, cfg.DefaultWorkspace, name, nil)
			if lookupErr != nil || existing == nil {
				return err
			}
			folder = existing
		}
		if name == "Projects" {
			projectsID = folder.ID
		}
	}

	if projectsID != "" {
		for _, name := range []string{"Ideas", "In Progress"} {
			if _, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
				Workspace: cfg.DefaultWorkspace,
				Name:      name,
				ParentID:  &projectsID,
			}); err != nil {
				existing, lookupErr := folderRepo.GetByNameAndParent(ctx, cfg.DefaultWorkspace, name, &projectsID)
				if lookupErr != nil || existing == nil {
					return err
				}
			}
		}
	}
	return nil
}
