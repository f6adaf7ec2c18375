package main

import (
	"log"
	"os"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
	"github.com/Hanyshennawy/moe-scorm-lms/storage/database"
	sqlxrepos "github.com/Hanyshennawy/moe-scorm-lms/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	courses := sqlxrepos.NewCourseRepository(db)
	svc := progress.NewService(
		sqlxrepos.NewProgressRepository(db),
		session.NewTracker(sqlxrepos.NewSessionRepository(db)),
		courses,
		core.NewValidator(core.NewTranslator()),
	)

	// start CLI
	cli := commandLine{
		db:      db,
		courses: courses,
		svc:     svc,
		out:     os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("error: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
