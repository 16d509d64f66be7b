package main

import (
	"github.com/spf13/cobra"

	"fspec/internal/domain"
)

var (
	advanceFrom  string
	advanceEvent string
)

// statusCmd moves a work unit to an explicit stage
var statusCmd = &cobra.Command{
	Use:   "status [id] [stage]",
	Short: "Set a work unit's stage",
	Long: `Moves a work unit to the given stage. Stages:
  backlog, specifying, testing, implementing, validating, done, blocked`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.SetStatus(cmd.Context(), args[0], domain.Status(args[1]))
		if err != nil {
			return err
		}
		logger.Info("status changed", "id", args[0], "from", res.Transition.From, "to", res.Transition.To)
		return printJSON(cmd, res)
	},
}

// advanceCmd applies a workflow event to a work unit
var advanceCmd = &cobra.Command{
	Use:   "advance [id]",
	Short: "Auto-advance a work unit on a workflow event",
	Long: `Applies a workflow event and advances the unit when the event
matches its current stage. A non-matching event is a no-op, not an
error, so callers can re-send events safely.

Events:
  spec-approved           specifying  -> testing
  tests-pass              testing     -> implementing
  implementation-complete implementing -> validating
  validation-pass         validating  -> done`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.AutoAdvance(cmd.Context(), args[0], domain.Status(advanceFrom), advanceEvent)
		if err != nil {
			return err
		}
		if res.Result.Applied {
			logger.Info("advanced", "id", args[0], "from", res.Result.From, "to", res.Result.To)
		} else {
			logger.Debug("advance was a no-op", "id", args[0], "event", advanceEvent)
		}
		return printJSON(cmd, res)
	},
}

// historyCmd prints a unit's stage transition log
var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show a work unit's stage history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	advanceCmd.Flags().StringVar(&advanceFrom, "from", "", "expected current stage (required)")
	advanceCmd.Flags().StringVar(&advanceEvent, "event", "", "workflow event (required)")
	_ = advanceCmd.MarkFlagRequired("from")
	_ = advanceCmd.MarkFlagRequired("event")

	rootCmd.AddCommand(statusCmd, advanceCmd, historyCmd)
}
