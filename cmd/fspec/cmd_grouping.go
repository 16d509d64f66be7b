package main

import (
	"github.com/spf13/cobra"
)

var epicDeleteForce bool

// epicCmd groups the epic subcommands
var epicCmd = &cobra.Command{
	Use:   "epic",
	Short: "Manage epics",
}

// epicCreateCmd registers a new epic
var epicCreateCmd = &cobra.Command{
	Use:   "create [id] [title]",
	Short: "Create an epic",
	Long:  `Epic ids are lowercase kebab-case, e.g. user-authentication.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.CreateEpic(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		logger.Info("epic created", "id", args[0])
		return printJSON(cmd, res)
	},
}

// epicListCmd lists all epics
var epicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List epics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.ListEpics(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// epicAssignCmd moves a work unit into an epic
var epicAssignCmd = &cobra.Command{
	Use:   "assign [unit-id] [epic-id]",
	Short: "Assign a work unit to an epic",
	Long: `Moves a unit into an epic, detaching it from its previous epic
if it had one. An empty epic id detaches the unit entirely:

  fspec epic assign AUTH-001 ""`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.AssignEpic(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// epicProgressCmd rolls up completion for an epic
var epicProgressCmd = &cobra.Command{
	Use:   "progress [epic-id]",
	Short: "Show an epic's completion roll-up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.EpicProgress(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// epicDeleteCmd removes an epic
var epicDeleteCmd = &cobra.Command{
	Use:   "delete [epic-id]",
	Short: "Delete an epic",
	Long: `Deleting an epic that still has work units fails unless --force
is given, in which case the units are detached first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.DeleteEpic(cmd.Context(), args[0], epicDeleteForce)
		if err != nil {
			return err
		}
		if res.ClearedUnits > 0 {
			logger.Info("epic deleted", "id", args[0], "detached_units", res.ClearedUnits)
		}
		return printJSON(cmd, res)
	},
}

// prefixCmd groups the prefix subcommands
var prefixCmd = &cobra.Command{
	Use:   "prefix",
	Short: "Manage work unit prefixes",
}

// prefixCreateCmd registers a new id prefix
var prefixCreateCmd = &cobra.Command{
	Use:   "create [id] [description]",
	Short: "Register a prefix",
	Long:  `Prefixes are 2 to 6 uppercase letters, e.g. AUTH or WEB.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.CreatePrefix(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// prefixListCmd lists registered prefixes
var prefixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prefixes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.ListPrefixes(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// prefixDeleteCmd removes an unused prefix
var prefixDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a prefix",
	Long:  "A prefix can only be deleted while no work units use it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.DeletePrefix(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	epicDeleteCmd.Flags().BoolVar(&epicDeleteForce, "force", false, "detach remaining work units instead of failing")

	epicCmd.AddCommand(epicCreateCmd, epicListCmd, epicAssignCmd, epicProgressCmd, epicDeleteCmd)
	prefixCmd.AddCommand(prefixCreateCmd, prefixListCmd, prefixDeleteCmd)
	rootCmd.AddCommand(epicCmd, prefixCmd)
}
