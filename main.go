package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ishamir/crlmon/crl"
	"github.com/ishamir/crlmon/persistence"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %s", err)
	}

	var (
		serve  = flag.Bool("serve", false, "run the HTTP API and periodic checker")
		server = flag.String("server", "", "CDP server hosting the CRL")
		path   = flag.String("path", string(crl.PathCertEnroll), "CDP path segment (CertEnroll or CertData)")
		name   = flag.String("crl", "", "CRL file name")
	)
	flag.Parse()

	cfg := LoadConfig()

	if *serve {
		runServer(cfg)
		return
	}

	if *server == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "usage: crlmon -server <cdp-server> [-path <segment>] -crl <file>")
		os.Exit(2)
	}

	checker := newChecker(nil, cfg)

	ref := crl.Reference{Server: *server, Path: crl.PathType(*path), Name: *name}

	if _, err := checker.Check(context.Background(), ref); err != nil {
		logrus.Errorf("Check failed: %s", err)
		os.Exit(1)
	}
}

func runServer(cfg Config) {
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Could not open database: %s", err)
	}

	if err := db.AutoMigrate(&persistence.WatchedCRL{}); err != nil {
		logrus.Fatalf("Could not migrate database: %s", err)
	}

	checker := newChecker(db, cfg)

	go func(checker *crlChecker) {
		for {
			time.Sleep(cfg.CheckInterval)

			if err := checker.Run(context.Background()); err != nil {
				logrus.Errorf("Could not run periodic check: %s", err)
			}
		}
	}(checker)

	r := mux.NewRouter()
	r.HandleFunc("/crls", listHandler(checker)).Methods(http.MethodGet)
	r.HandleFunc("/crls", addHandler(checker)).Methods(http.MethodPost)
	r.HandleFunc("/crls/{name}", removeHandler(checker)).Methods(http.MethodDelete)
	r.HandleFunc("/run", runHandler(checker)).Methods(http.MethodPost)

	logrus.Infof("Listening on %s", cfg.ListenAddr)

	if err := http.ListenAndServe(cfg.ListenAddr, handlers.LoggingHandler(os.Stdout, r)); err != nil {
		logrus.Fatalf("HTTP server failed: %s", err)
	}
}

func addHandler(checker *crlChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ref := crl.Reference{
			Server: r.Form.Get("server"),
			Path:   crl.PathType(r.Form.Get("path")),
			Name:   r.Form.Get("crl"),
		}

		if ref.Server == "" || ref.Name == "" {
			http.Error(w, "missing server or crl", http.StatusBadRequest)
			return
		}

		if ref.Path == "" {
			ref.Path = crl.PathCertEnroll
		}

		if err := checker.Add(r.Context(), ref); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

func removeHandler(checker *crlChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Remove(r.Context(), mux.Vars(r)["name"]); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func listHandler(checker *crlChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watched, err := checker.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for _, c := range watched {
			expires := "never checked"
			if !c.ExpiresAt.IsZero() {
				expires = "expires " + humanize.Time(c.ExpiresAt)
			}

			fmt.Fprintf(w, "%s/%s/%s status=%d %s\n", c.Server, c.Path, c.Name, c.Status, expires)
		}
	}
}

func runHandler(checker *crlChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Run(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Fprintln(w, "run complete")
	}
}
