package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tmpim/tenebra-wallet/internal/api"
	"github.com/tmpim/tenebra-wallet/internal/client"
	"github.com/tmpim/tenebra-wallet/internal/config"
	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/handler"
	"github.com/tmpim/tenebra-wallet/internal/store"
	"github.com/tmpim/tenebra-wallet/internal/submit"
	"github.com/tmpim/tenebra-wallet/internal/syncer"
	"github.com/tmpim/tenebra-wallet/internal/ws"
)

// @title Tenebra Wallet API
// @version 1.0
// @description Local wallet daemon for the Tenebra network. Wallet secrets
// @description are encrypted at rest with a master password and never leave
// @description the machine.
// @BasePath /
func main() {
	if err := config.Init(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.Get()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "main")

	dataDir := config.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		log.WithError(err).Fatal("failed to create data directory")
	}

	record, err := store.LoadVaultRecord(dataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load vault record")
	}
	session := crypto.NewSession(crypto.DefaultParams, record)

	if cfg.PromptMasterPassword {
		if record == nil {
			log.Fatal("cannot prompt for master password: no vault configured yet")
		}
		password, err := config.PromptForMasterPassword()
		if err != nil {
			log.WithError(err).Fatal("failed to read master password")
		}
		if err := session.Unlock(password); err != nil {
			log.WithError(err).Fatal("master password verification failed")
		}
		log.Info("master password verified, session unlocked")
	}

	bus := event.New()

	wallets, err := store.OpenWalletStore(dataDir, bus)
	if err != nil {
		log.WithError(err).Fatal("failed to open wallet store")
	}
	contacts, err := store.OpenContactStore(dataDir, bus)
	if err != nil {
		log.WithError(err).Fatal("failed to open contact store")
	}

	node := client.NewTenebraClient(config.GetNodeURL())
	submitter := submit.New(session, wallets, node)

	engine := syncer.New(node, wallets, bus, time.Duration(cfg.SyncIntervalMinutes)*time.Minute)
	if err := engine.Start(); err != nil {
		log.WithError(err).Fatal("failed to start sync engine")
	}
	defer engine.Stop()

	var conn *ws.Connection
	if cfg.WSEnabled {
		conn = ws.New(node, bus, ws.DefaultSubscriptions)
		if err := conn.Connect(); err != nil {
			log.WithError(err).Fatal("failed to start websocket connection")
		}
		defer conn.Close()
	}

	h := handler.New(session, wallets, contacts, engine, submitter, node, dataDir)
	port := config.GetPort()
	server := &http.Server{
		Addr:    ":" + port,
		Handler: api.SetupRouter(h),
	}

	go func() {
		log.WithField("port", port).Info("wallet daemon listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
