package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/stackos/landing/config"
	"github.com/stackos/landing/domain/admin"
	"github.com/stackos/landing/pkg/constants"
	"github.com/stackos/landing/pkg/migrations"
	"gorm.io/gorm"
)

type MigrateCmd struct {
	Dir     string        `help:"Directory of *.sql migrations. Empty uses the migrations built into the binary." env:"MIGRATIONS_DIR"`
	Timeout time.Duration `help:"Give up after this long." default:"5m"`
}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	logger := globals.Logger

	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB, migrations.Config{Dir: m.Dir, Logger: logger}); err != nil {
		return err
	}

	logger.Info("Database migrations completed")
	return nil
}

type StatsCmd struct {
	JSON bool `help:"Print the dashboard as JSON."`
}

func (s *StatsCmd) Run(ctx context.Context, globals *Globals) error {
	db, err := config.NewDatabase(globals.Logger, nil)
	if err != nil {
		return fmt.Errorf("connect for stats: %w", err)
	}
	defer config.CloseDatabase(db, globals.Logger)

	return s.print(ctx, os.Stdout, db, globals)
}

func (s *StatsCmd) print(ctx context.Context, w io.Writer, db *gorm.DB, globals *Globals) error {
	service := admin.NewAdminServiceFactory(db, globals.Logger).CreateService()

	dashboard, err := service.Dashboard(ctx)
	if err != nil {
		return err
	}

	if s.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(admin.ToDashboardResponse(dashboard))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total registrations\t%d\n", dashboard.Total)
	fmt.Fprintf(tw, "Last %d days\t%d\n", constants.ShortWindowDays, dashboard.Last7Days)
	fmt.Fprintf(tw, "Last %d days\t%d\n", constants.LongWindowDays, dashboard.Last30Days)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "EMAIL\tCREATED")
	for _, entry := range dashboard.Recent {
		fmt.Fprintf(tw, "%s\t%s\n", entry.Email, entry.CreatedAt.UTC().Format(constants.DisplayDateTimeFormat))
	}
	return tw.Flush()
}
