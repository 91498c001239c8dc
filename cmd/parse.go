package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lojista-tools/recibo/internal/receipt"
)

var parseWithText bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract a receipt record from recognized slip text",
	Long:  "Reads recognized text from a file (or stdin) and prints the extracted receipt record as JSON. Fields that could not be resolved are listed in needs_user_input.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}

		rec, normalized := receipt.ExtractText(string(raw))

		if parseWithText {
			return printJSON(struct {
				NormalizedText string          `json:"normalized_text"`
				Record         *receipt.Record `json:"record"`
			}{normalized, rec})
		}
		return printJSON(rec)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseWithText, "with-text", false, "include the normalized text in the output")
	rootCmd.AddCommand(parseCmd)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", args[0])
	}
	return data, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	fmt.Println(string(out))
	return nil
}
