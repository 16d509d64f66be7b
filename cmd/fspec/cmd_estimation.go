package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"fspec/internal/domain"
)

var accuracyByPrefix bool

// estimateCmd assigns a point estimate
var estimateCmd = &cobra.Command{
	Use:   "estimate [id] [points]",
	Short: "Assign a point estimate",
	Long:  "Assigns a point estimate from the scale 1, 2, 3, 5, 8, 13, 21.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return domain.NewValidation("points must be a number, got %q", args[1])
		}
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.AssignEstimate(cmd.Context(), args[0], points)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// tokensCmd records token consumption against a unit
var tokensCmd = &cobra.Command{
	Use:   "tokens [id] [count]",
	Short: "Record tokens consumed on a work unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return domain.NewValidation("token count must be a number, got %q", args[1])
		}
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.RecordTokens(cmd.Context(), args[0], count)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// iterateCmd bumps a unit's iteration counter
var iterateCmd = &cobra.Command{
	Use:   "iterate [id]",
	Short: "Increment a work unit's iteration count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.IncrementIteration(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// cycleTimeCmd reports elapsed hours from creation to done
var cycleTimeCmd = &cobra.Command{
	Use:   "cycle-time [id]",
	Short: "Show hours from creation to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.CycleTime(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// accuracyCmd compares actuals against estimates
var accuracyCmd = &cobra.Command{
	Use:   "accuracy [id]",
	Short: "Compare actual token spend against estimates",
	Long: `Without arguments, summarizes completed units bucketed by
estimate. With an id, reports that unit's spend against the expected
band. With --by-prefix, reports calibration per id prefix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		switch {
		case len(args) == 1:
			res, err := svc.EstimateAccuracy(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		case accuracyByPrefix:
			res, err := svc.EstimateAccuracyByPrefix(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		default:
			res, err := svc.EstimateAccuracySummary(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}
	},
}

// guideCmd suggests estimates from historical spend
var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show estimation guidance from completed units",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.EstimationGuide(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	accuracyCmd.Flags().BoolVar(&accuracyByPrefix, "by-prefix", false, "group calibration by id prefix")

	rootCmd.AddCommand(estimateCmd, tokensCmd, iterateCmd, cycleTimeCmd, accuracyCmd, guideCmd)
}
