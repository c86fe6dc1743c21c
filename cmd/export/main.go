// Command export builds the encrypted offline check-in bundle for one
// event and writes it as JSON, for loading onto scanning devices that
// cannot reach the service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vogiaan1904/ticketbottle-checkin/config"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/infra/mysql"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/repository"
	mysqlRepo "github.com/vogiaan1904/ticketbottle-checkin/internal/repository/mysql"
	"github.com/vogiaan1904/ticketbottle-checkin/internal/service"
	pkgLog "github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

// noopCache disables bundle caching: a one-shot export always reads the
// authoritative store.
type noopCache struct{}

func (noopCache) StoreBundle(context.Context, int64, map[string]string, time.Duration) error {
	return nil
}

func (noopCache) GetBundle(context.Context, int64) (map[string]string, error) {
	return nil, repository.ErrNotFound
}

func (noopCache) InvalidateBundle(context.Context, int64) error {
	return nil
}

func main() {
	var (
		eventID = flag.Int64("event", 0, "event id to export")
		out     = flag.String("out", "-", "output file, - for stdout")
		fields  = flag.String("fields", "", "comma separated additional field names")
	)
	flag.Parse()

	if *eventID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: export -event <id> [-out file] [-fields a,b,c]")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	db, err := mysql.Connect(ctx, cfg.MySQL)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to MySQL: %v", err)
	}
	defer mysql.Disconnect(db)

	eventRepo := mysqlRepo.NewEventRepository(db, l)
	ticketRepo := mysqlRepo.NewTicketRepository(db, l)
	categoryRepo := mysqlRepo.NewCategoryRepository(db, l)
	fieldRepo := mysqlRepo.NewFieldRepository(db, l)
	settingsRepo := mysqlRepo.NewSettingsRepository(db, l)

	settingsSvc := service.NewSettingsService(l, settingsRepo)
	exportSvc := service.NewAttendeeExportService(l, service.ExportConfig{
		Concurrency: cfg.CheckIn.ExportConcurrency,
		CacheTTL:    cfg.CheckIn.ExportCacheTTL,
	}, eventRepo, ticketRepo, categoryRepo, fieldRepo, settingsSvc, noopCache{})

	var additionalFields []string
	if *fields != "" {
		additionalFields = strings.Split(*fields, ",")
	}

	bundle, err := exportSvc.EncryptedAttendeesInformation(ctx, *eventID, additionalFields)
	if err != nil {
		l.Fatalf(ctx, "Failed to build offline bundle: %v", err)
	}

	dst := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			l.Fatalf(ctx, "Failed to create output file: %v", err)
		}
		defer f.Close()
		dst = f
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		l.Fatalf(ctx, "Failed to write bundle: %v", err)
	}
}
