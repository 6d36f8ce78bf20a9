package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/artmural/mural/config"
	"github.com/artmural/mural/log"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/service"
	"github.com/artmural/mural/state"
	"github.com/artmural/mural/storage"
)

func main() {
	cfg := config.Load()
	log.Init(cfg.LogLevel, cfg.LogOutput, nil)
	log.Infow("starting murald", "config", cfg.String())

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Fatalf("could not create data directory: %v", err)
	}
	database, err := metadb.New(db.TypePebble, cfg.DataDir)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	engine, err := mpc.NewLocalEngine()
	if err != nil {
		log.Fatalf("could not create cluster engine: %v", err)
	}
	pub := engine.ClusterPubkey()
	log.Infow("cluster encryption key ready", "publicKey", hex.EncodeToString(pub[:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := mpc.NewCoordinator(engine)
	if err := coord.Start(ctx); err != nil {
		log.Fatalf("could not start tally coordinator: %v", err)
	}
	defer coord.Stop()

	machine := state.New(stg, coord)
	machine.SetSplitReset(cfg.SplitReset)

	tally := service.NewTally(machine)
	if err := tally.Start(ctx); err != nil {
		log.Fatalf("could not start tally service: %v", err)
	}
	defer tally.Stop()

	apiSrv := service.NewAPI(machine, cfg.APIHost, cfg.APIPort)
	if err := apiSrv.Start(ctx); err != nil {
		log.Fatalf("could not start API service: %v", err)
	}
	defer apiSrv.Stop()

	log.Infow("murald is up", "api", cfg.APIHost, "port", cfg.APIPort)
	<-ctx.Done()
	log.Infow("shutting down")
}
