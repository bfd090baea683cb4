package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"blackjack-server/internal/config"
	"blackjack-server/internal/jwt"
	"blackjack-server/internal/mux"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/pitboss"
	"blackjack-server/pkg/room"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")
var envFile = flag.String("env", ".env", "an optional file of environment variables")

func main() {
	flag.Parse()
	loadEnv()
	setupLogger()

	// fail fast
	jwt.LoadKeys()
	minBet, maxBet, err := config.Instance().Limits()
	if err != nil {
		logrus.WithError(err).Fatal("invalid table limits")
	}

	// run the db migrations
	db.Migrate()

	hub := room.NewHub()
	hub.StartShift()
	defer hub.EndShift()

	pitBoss := pitboss.New(db.Instance(), hub, pitboss.Limits{MinBet: minBet, MaxBet: maxBet})

	c := cors.New(cors.Options{
		AllowedOrigins: config.Instance().CORS.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: []string{"Blackjack-UserID"},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      recoveryHandler(loggingHandler(c.Handler(mux.NewMux(Version, pitBoss, hub)))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithFields(logrus.Fields{
		"addr":    srv.Addr,
		"version": Version,
		"minBet":  minBet.StringFixed(2),
		"maxBet":  maxBet.StringFixed(2),
	}).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

// loadEnv reads the env file if there is one
// Variables that are already set win
func loadEnv() {
	if err := godotenv.Load(*envFile); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("file", *envFile).Fatal("could not load env file")
		}

		return
	}

	logrus.WithField("file", *envFile).Info("env file loaded")
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func recoveryHandler(next http.Handler) http.Handler {
	return handlers.RecoveryHandler(handlers.RecoveryLogger(logrus.StandardLogger()), handlers.PrintRecoveryStack(true))(next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(config.Instance().Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
