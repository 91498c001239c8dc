package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lojista-tools/recibo/internal/recon"
)

var reconcileLLMInputs bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [file]",
	Short: "Reconcile a day's receipts against the settlement extract",
	Long:  "Reads a reconciliation request JSON ({receipts, extract, context}) and prints the traffic-light verdict. With --llm-inputs, prints the parse-enforced inputs for a downstream labeling model instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}

		var in recon.Input
		if err := json.Unmarshal(raw, &in); err != nil {
			return eris.Wrap(err, "decode reconciliation request")
		}

		if reconcileLLMInputs {
			return printJSON(recon.LLMInputs(in))
		}
		return printJSON(recon.Reconcile(in))
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileLLMInputs, "llm-inputs", false, "print parse-enforced labeling inputs instead of the verdict")
	rootCmd.AddCommand(reconcileCmd)
}
