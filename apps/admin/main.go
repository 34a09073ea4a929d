package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core"
	"github.com/trezcool/avaliacao/core/user"
	"github.com/trezcool/avaliacao/storage/database"
	boiledrepos "github.com/trezcool/avaliacao/storage/database/sqlboiler"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	// adduser & resetpassword need the schema; `migrate` may be asked to go down first
	if len(os.Args) > 1 && os.Args[1] != "migrate" {
		errAndDie(database.Migrate(context.Background(), db.DB, conf.Database.Engine))
	}

	// start CLI
	cli := commandLine{
		db:     db,
		engine: conf.Database.Engine,
		usrSvc: user.NewService(boiledrepos.NewUserRepository(db)),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", describe(err))
		}
		db.Close()
		os.Exit(1)
	}
}

// describe spells out validation failures field by field.
func describe(err error) string {
	var msgs []string
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		for _, fe := range e {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Translate(core.Translator)))
		}
	case *core.ValidationError:
		for _, fe := range e.Fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Error))
		}
	}
	if len(msgs) == 0 {
		return err.Error()
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
