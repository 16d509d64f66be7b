package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"fspec/internal/app"
	"fspec/internal/domain"
)

var (
	itemActor          string
	itemTimestamp      string
	itemBoundedContext string
	itemConcern        string
)

// itemCmd groups the ledger item subcommands
var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage a work unit's specification ledger",
	Long: `Each work unit carries ledgers of specification items. Kinds:
  rule, example, question          (addable while specifying)
  architecture-note                (addable in any working stage)
  domain-event, command, policy, hotspot
                                   (event storm, any working stage)

Items are soft-deleted and can be restored. Ledgers freeze once the
unit is done or blocked.`,
}

// itemAddCmd appends an item to one of the unit's ledgers
var itemAddCmd = &cobra.Command{
	Use:   "add [unit-id] [kind] [text]",
	Short: "Add a ledger item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.AddItem(cmd.Context(), app.AddItemInput{
			UnitID:         args[0],
			Kind:           domain.ItemKind(args[1]),
			Text:           args[2],
			Actor:          itemActor,
			Timestamp:      itemTimestamp,
			BoundedContext: itemBoundedContext,
			Concern:        itemConcern,
		})
		if err != nil {
			return err
		}
		logger.Info("item added", "unit", args[0], "kind", args[1], "item", res.Item.ID)
		return printJSON(cmd, res)
	},
}

// itemDeleteCmd soft-deletes a ledger item
var itemDeleteCmd = &cobra.Command{
	Use:   "delete [unit-id] [kind] [item-id]",
	Short: "Soft-delete a ledger item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseItemID(args[2])
		if err != nil {
			return err
		}
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.SoftDeleteItem(cmd.Context(), args[0], domain.ItemKind(args[1]), itemID)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// itemRestoreCmd restores a soft-deleted ledger item
var itemRestoreCmd = &cobra.Command{
	Use:   "restore [unit-id] [kind] [item-id]",
	Short: "Restore a soft-deleted ledger item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseItemID(args[2])
		if err != nil {
			return err
		}
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.RestoreItem(cmd.Context(), args[0], domain.ItemKind(args[1]), itemID)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// itemDeletedCmd lists a unit's soft-deleted items
var itemDeletedCmd = &cobra.Command{
	Use:   "deleted [unit-id]",
	Short: "List soft-deleted ledger items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.ListDeletedItems(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// stormLevelCmd sets the event storm granularity
var stormLevelCmd = &cobra.Command{
	Use:   "storm-level [unit-id] [level]",
	Short: "Set a unit's event storm level",
	Long:  "Levels: big-picture, process-modeling, software-design.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.SetEventStormLevel(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func parseItemID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidation("item id must be a number, got %q", raw)
	}
	return id, nil
}

func init() {
	itemAddCmd.Flags().StringVar(&itemActor, "actor", "", "actor for event storm items")
	itemAddCmd.Flags().StringVar(&itemTimestamp, "timestamp", "", "timestamp note for event storm items")
	itemAddCmd.Flags().StringVar(&itemBoundedContext, "bounded-context", "", "bounded context for event storm items")
	itemAddCmd.Flags().StringVar(&itemConcern, "concern", "", "concern for hotspot items")

	itemCmd.AddCommand(itemAddCmd, itemDeleteCmd, itemRestoreCmd, itemDeletedCmd)
	rootCmd.AddCommand(itemCmd, stormLevelCmd)
}
