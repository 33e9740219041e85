package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/valyala/fasthttp"

	"tender-cost-engine/internal/config"
	"tender-cost-engine/internal/engine"
	"tender-cost-engine/internal/handler"
	"tender-cost-engine/internal/logging"
	"tender-cost-engine/internal/rateregistry"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}

	rates, err := rateregistry.New(rateregistry.Options{
		CardPath: cfg.RateCard,
		URL:      cfg.RateRegistryURL,
		Timeout:  cfg.RateRegistryTimeout,
	})
	if err != nil {
		log.Error(err, "Rate registry unavailable")
		os.Exit(1)
	}

	e := engine.New(cfg.Defaults(), rates, engine.Options{BatchConcurrency: cfg.BatchConcurrency})
	h := handler.New(e, log)

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Info("Tender cost engine starting", "addr", addr, "rateCard", cfg.RateCard, "rateRegistry", cfg.RateRegistryURL)
	if err := fasthttp.ListenAndServe(addr, h.Serve); err != nil {
		log.Error(err, "Server failed")
		os.Exit(1)
	}
}
