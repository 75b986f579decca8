package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	cli "github.com/jawher/mow.cli"
	log "github.com/sirupsen/logrus"

	"github.com/scott-ace-newton/messages-rw-sql/messages"
	"github.com/scott-ace-newton/messages-rw-sql/persistence"
	"github.com/scott-ace-newton/messages-rw-sql/weather"
)

const (
	appName        = "messages-rw-sql"
	appDescription = "Application for registering users and posting and reading location messages backed by a sql db"

	weatherTimeout = 5 * time.Second
)

func main() {
	app := cli.App(appName, appDescription)

	dbPath := app.String(cli.StringOpt{
		Name:   "dbPath",
		Value:  "messages.db",
		Desc:   "Path to the sqlite database file, created on first use",
		EnvVar: "DB_PATH",
	})
	weatherURL := app.String(cli.StringOpt{
		Name:   "weatherURL",
		Value:  "http://localhost:4001/weather",
		Desc:   "Url of the external weather service",
		EnvVar: "WEATHER_URL",
	})
	certFile := app.String(cli.StringOpt{
		Name:   "certFile",
		Desc:   "Path to the TLS certificate; server uses plain HTTP when unset",
		EnvVar: "TLS_CERT_FILE",
	})
	keyFile := app.String(cli.StringOpt{
		Name:      "keyFile",
		Desc:      "Path to the TLS private key",
		EnvVar:    "TLS_KEY_FILE",
		HideValue: true,
	})
	port := app.String(cli.StringOpt{
		Name:   "port",
		Value:  "8001",
		Desc:   "Port to listen on",
		EnvVar: "APP_PORT",
	})
	logLevel := app.String(cli.StringOpt{
		Name:   "logLevel",
		Value:  "info",
		Desc:   "App log level",
		EnvVar: "LOG_LEVEL",
	})

	app.Action = func() {
		logLvl, err := log.ParseLevel(*logLevel)
		if err != nil {
			log.WithField("logLevel", *logLevel).WithError(err).Error("could not parse log level. Using INFO instead.")
			logLvl = log.InfoLevel
		}
		log.SetLevel(logLvl)
		log.Infof("[Startup] %s is starting on port %s...", appName, *port)

		sqlClient, err := persistence.NewClient(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("could not open message database")
		}
		defer sqlClient.Close()

		weatherClient := weather.NewClient(*weatherURL, weatherTimeout)

		h := messages.NewMessagesHandler(sqlClient, weatherClient)
		r := mux.NewRouter()
		r.Use(messages.TransactionAwareLogger)
		h.RegisterHandlers(r)

		srv := &http.Server{
			Addr:    ":" + *port,
			Handler: r,
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			log.Infof("Listening on port %v", *port)
			var err error
			if *certFile != "" && *keyFile != "" {
				err = srv.ListenAndServeTLS(*certFile, *keyFile)
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("HTTP server got shut down error")
				sig <- syscall.SIGTERM
			}
		}()

		<-sig
		log.Info("shutting down HTTP server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("error during server shutdown")
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("app could not start")
	}
}
