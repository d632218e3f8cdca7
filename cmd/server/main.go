package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"goswapbridge/bridges"
	"goswapbridge/config"
	"goswapbridge/history"
	"goswapbridge/pathfinder"
	"goswapbridge/redis"
	"goswapbridge/swap"
	"goswapbridge/txmanager"
	"goswapbridge/types"
	"goswapbridge/workers"
	"goswapbridge/workers/handlers"

	"github.com/shopspring/decimal"
)

// redisRecords adapts the redis package to the orchestrator's record store.
type redisRecords struct{}

func (redisRecords) Upsert(rec *types.TransferRecord) error {
	return redis.UpsertTransferRecord(rec)
}

// redisRoutes persists the pathfinder route the swap service quotes with.
type redisRoutes struct{}

func (redisRoutes) Route() (string, error)      { return redis.GetPathfinderRoute() }
func (redisRoutes) SetRoute(route string) error { return redis.SetPathfinderRoute(route) }
func (redisRoutes) ClearRoute() error           { return redis.ClearPathfinderRoute() }

func main() {
	log.Print("Starting cross-chain swap bridge")

	f, err := os.OpenFile(fmt.Sprintf("logs/log_%s.txt", time.Now().Format("2006-01-02")), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file for writing: %v", err)
	}
	defer f.Close()

	log.SetOutput(f)

	config.Init()

	// connect to Redis, without persistence do not continue
	redis.Init()

	slippage, err := decimal.NewFromString(config.Config.Swap.SlippagePercent)
	if err != nil {
		log.Fatalf("invalid slippage percent %q: %v", config.Config.Swap.SlippagePercent, err)
	}

	hop := bridges.NewHop(config.Config.Bridges.HopAPI)
	connext := bridges.NewConnext(config.Config.Bridges.ConnextRPC)
	cbridge := bridges.NewCBridge(config.Config.Bridges.CBridgeAPI)

	mgr := txmanager.New(redisRecords{}, hop, connext, cbridge)
	hist := history.New(hop, connext, cbridge)
	swapSvc := swap.New(
		pathfinder.NewClient(config.Config.PathFinder.BaseURL),
		redisRoutes{},
		slippage,
	)

	handlers.Init(mgr, hist, swapSvc)

	// two worker threads:
	// * reconcile persisted transfer records against bridge histories
	// * API serving HTTPS server (serves as main worker thread)
	go workers.Worker_reconcileHistory(hist)

	workers.Worker_HTTP()
}
