package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	_ "net/http/pprof"

	"filmdash/internal/config"
	"filmdash/internal/container"
	"filmdash/internal/errors"
	"filmdash/internal/migration"
	"filmdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

// initDatabase connects with the configured driver and applies the schema
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if appConfig.Database.Reset {
		if err := migration.Reset(ctx, db); err != nil {
			return nil, errors.Wrap(err, "database reset failed")
		}
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// The dashboard builds in the background; pages answer 503 until it is
	// ready and a failed build stops the process.
	appContainer.Dashboard.Start(ctx)
	go func() {
		if err := appContainer.Dashboard.Wait(ctx); err != nil {
			log.Fatalf("Failed to build dashboard from %s: %v", appConfig.Data.DatasetFile, err)
		}
	}()

	server, err := ui.NewServer(embeddedFiles, ui.Services{
		Auth:      appContainer.Auth,
		Forum:     appContainer.Forum,
		Messaging: appContainer.Messaging,
		Dashboard: appContainer.Dashboard,
	}, appConfig.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("Starting filmdash on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
