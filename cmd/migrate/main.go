package main

import (
	"database/sql"
	"flag"
	"time"

	"blackjack-server/pkg/db"
	"github.com/sirupsen/logrus"
)

var wait = flag.Duration("wait", time.Second*10, "how long to wait for the database")

func main() {
	flag.Parse()
	waitForDB(*wait)
	db.Migrate()
	logrus.Info("migrations complete")
}

func waitForDB(wait time.Duration) {
	timeout := time.NewTimer(wait)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh := func() *sql.DB {
				defer func() { _ = recover() }()
				return db.Instance()
			}()

			if dbh != nil {
				return
			}

			logrus.Debug("waiting for database")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
