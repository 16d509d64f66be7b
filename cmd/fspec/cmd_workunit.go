package main

import (
	"github.com/spf13/cobra"

	"fspec/internal/app"
	"fspec/internal/domain"
)

var (
	createPrefix string
	createType   string
	listStatus   string
)

// createCmd registers a new work unit under a prefix
var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a work unit",
	Long: `Creates a work unit under a registered prefix. The id is
allocated automatically as the next number in the prefix sequence,
e.g. AUTH-003.

Example:
  fspec create --prefix AUTH --type story "Login flow"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.CreateWorkUnit(cmd.Context(), app.CreateWorkUnitInput{
			Prefix: createPrefix,
			Type:   domain.WorkUnitType(createType),
			Title:  args[0],
		})
		if err != nil {
			return err
		}
		logger.Info("work unit created", "id", res.WorkUnit.ID, "type", res.WorkUnit.Type)
		return printJSON(cmd, res)
	},
}

// showCmd prints one work unit in full
var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a work unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.GetWorkUnit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// listCmd lists work units, optionally filtered by stage
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work units",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.ListWorkUnits(cmd.Context(), domain.Status(listStatus))
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// boardCmd shows every stage column with its units
var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the board grouped by stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.Board(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	createCmd.Flags().StringVar(&createPrefix, "prefix", "", "registered work unit prefix (required)")
	createCmd.Flags().StringVar(&createType, "type", "task", "work unit type: story, task, or bug")
	_ = createCmd.MarkFlagRequired("prefix")

	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by stage")

	rootCmd.AddCommand(createCmd, showCmd, listCmd, boardCmd)
}
