package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/quizdrill/quizdrill/internal/bank"
	"github.com/quizdrill/quizdrill/internal/config"
	"github.com/quizdrill/quizdrill/internal/gitsource"
	"github.com/quizdrill/quizdrill/internal/storage"
	"github.com/quizdrill/quizdrill/internal/sync"
	"github.com/quizdrill/quizdrill/internal/web"
)

func main() {
	flags := pflag.NewFlagSet("quizdrill", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to a quizdrill.yaml config file")
	flags.String("bank", "", "Path to the questions.json bank (inside the checkout when --bank-repo is set)")
	flags.String("bank-repo", "", "Git URL of a question-bank repository to clone or pull")
	flags.String("db", "", "Path to the SQLite database file")
	flags.String("listen", "", "HTTP listen address")
	syncOnly := flags.Bool("sync-only", false, "Sync the bank and reconcile stored state, then exit")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bankPath := cfg.Bank.Path
	if cfg.Bank.Repo != "" {
		if err := gitsource.Sync(cfg.Bank.Repo, cfg.Bank.RepoDir); err != nil {
			log.Fatalf("Failed to sync question bank repo: %v", err)
		}
		bankPath = filepath.Join(cfg.Bank.RepoDir, cfg.Bank.Path)
	}

	b, err := bank.Load(bankPath)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	slog.Info("question bank loaded", "path", bankPath, "questions", b.Len(), "topics", len(b.Topics()))

	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := sync.Reconcile(db, b); err != nil {
		log.Fatalf("Failed to reconcile stored state: %v", err)
	}
	if *syncOnly {
		return
	}

	history, err := db.LoadHistory(cfg.Scheduler)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	server := web.NewServer(db, b, cfg.Scheduler, history)
	slog.Info("listening", "addr", cfg.Web.Listen)
	log.Fatal(http.ListenAndServe(cfg.Web.Listen, server))
}
