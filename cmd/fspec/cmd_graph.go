package main

import (
	"github.com/spf13/cobra"
)

// blockCmd records a blocking dependency edge
var blockCmd = &cobra.Command{
	Use:   "block [blocker] [blocked]",
	Short: "Record that one unit blocks another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.Block(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		logger.Info("dependency recorded", "blocker", args[0], "blocked", args[1])
		return printJSON(cmd, res)
	},
}

// unblockCmd removes a blocking dependency edge
var unblockCmd = &cobra.Command{
	Use:   "unblock [blocker] [blocked]",
	Short: "Remove a blocking dependency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.Unblock(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// blockedCmd lists everything a unit blocks, transitively
var blockedCmd = &cobra.Command{
	Use:   "blocked [id]",
	Short: "List all units a unit blocks, directly or transitively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.TransitiveBlocked(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// bottlenecksCmd ranks active units by how much work they hold up
var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks",
	Short: "Rank active units by blocked work",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.Bottlenecks(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(blockCmd, unblockCmd, blockedCmd, bottlenecksCmd)
}
