package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"yatube/internal/app"
	"yatube/internal/auth"
	"yatube/internal/db"
	httpx "yatube/internal/http"
	"yatube/internal/models"
)

func main() {
	cfg := app.LoadConfig()
	log := app.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := db.Open(ctx, cfg.DatabaseURL)
	app.Must(log, err)
	defer d.Close()
	app.Must(log, db.Migrate(ctx, d))

	store := db.NewStore(d)

	if len(os.Args) > 1 && os.Args[1] == "creategroup" {
		app.Must(log, createGroup(ctx, store, os.Args[2:]))
		return
	}

	srv, err := httpx.NewServer(store, auth.NewManager(d, cfg.SessionLifetime), cfg, log)
	app.Must(log, err)
	app.Must(log, serve(ctx, log, cfg, srv))
}

func serve(ctx context.Context, log zerolog.Logger, cfg app.Config, h http.Handler) error {
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// createGroup adds a group from the command line:
//
//	server creategroup -slug cats -title Cats [-description "..."]
func createGroup(ctx context.Context, store *db.Store, args []string) error {
	fs := flag.NewFlagSet("creategroup", flag.ContinueOnError)
	slug := fs.String("slug", "", "unique group slug")
	title := fs.String("title", "", "group title")
	descr := fs.String("description", "", "group description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" || *title == "" {
		return errors.New("creategroup: -slug and -title are required")
	}

	g := &models.Group{Title: *title, Slug: *slug, Description: *descr}
	if err := store.CreateGroup(ctx, g); err != nil {
		return fmt.Errorf("creategroup: %w", err)
	}
	fmt.Printf("created group %d (%s)\n", g.ID, g.Slug)
	return nil
}
