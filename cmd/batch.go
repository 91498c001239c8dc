package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lojista-tools/recibo/internal/receipt"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Extract receipt records from many slip files concurrently",
	Long:  "Parses each recognized-text file independently and prints one record JSON per line. A file that cannot be read is logged and skipped; extraction itself never fails.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Parse.Concurrency
		}

		zap.L().Info("parsing batch",
			zap.Int("files", len(args)),
			zap.Int("concurrency", concurrency),
		)

		results := make([]*receipt.Record, len(args))
		var failed atomic.Int64

		g, _ := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)
		for i, path := range args {
			g.Go(func() error {
				data, err := os.ReadFile(path)
				if err != nil {
					failed.Add(1)
					zap.L().Error("read slip file", zap.String("path", path), zap.Error(err))
					return nil // don't abort the batch on individual failure
				}
				rec, _ := receipt.ExtractText(string(data))
				results[i] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, rec := range results {
			if rec == nil {
				continue
			}
			line, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			fmt.Println(string(line))
		}

		zap.L().Info("batch complete",
			zap.Int("parsed", len(args)-int(failed.Load())),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel workers (default from config)")
	rootCmd.AddCommand(batchCmd)
}
