// Package handlers implements the HTTP API of the bridge service.
package handlers

import (
	"goswapbridge/history"
	"goswapbridge/swap"
	"goswapbridge/txmanager"
)

var (
	mgr     *txmanager.Manager
	hist    *history.Aggregator
	swapSvc *swap.Service
)

// Init wires the collaborators once at startup, before the HTTP worker
// accepts traffic.
func Init(m *txmanager.Manager, h *history.Aggregator, s *swap.Service) {
	mgr = m
	hist = h
	swapSvc = s
}
