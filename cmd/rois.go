package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lojista-tools/recibo/internal/receipt"
)

var roisCmd = &cobra.Command{
	Use:   "rois [file]",
	Short: "Extract a receipt record from labeled region readings",
	Long:  "Reads a JSON map of region label to recognized text (a bare string, or an object with vote/text and variants) and prints the extracted receipt record.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}

		var rois map[string]receipt.ROI
		if err := json.Unmarshal(raw, &rois); err != nil {
			return eris.Wrap(err, "decode region map")
		}

		return printJSON(receipt.ExtractROIs(rois))
	},
}

func init() {
	rootCmd.AddCommand(roisCmd)
}
