package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fanta-optimizer/internal/api/validation"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/pkg/config"
	"github.com/stitts-dev/fanta-optimizer/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: optimize <request.json|request.yaml>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.SetOutput(os.Stderr)

	if err := run(os.Args[1], cfg, log); err != nil {
		log.WithError(err).Error("Optimization failed")
		os.Exit(1)
	}
}

func run(path string, cfg *config.Config, log *logrus.Logger) error {
	req, err := loadRequest(path)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			for _, d := range verr.Details {
				log.WithField("detail", d).Error("Invalid request")
			}
		}
		return err
	}

	opts, err := cfg.OptimizerOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := optimizer.New(opts, log).BuildRequest(req)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		log.WithFields(logrus.Fields{
			"code": w.Code,
			"role": w.Role,
		}).Warn(w.Message)
	}
	log.WithFields(logrus.Fields{
		"total_cost":  result.TotalCost,
		"total_score": result.TotalScore,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Roster built")

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
