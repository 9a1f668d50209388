package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/export"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/settle"
)

func expenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and inspect expenses",
	}
	cmd.AddCommand(expenseAddCommand())
	cmd.AddCommand(expenseListCommand())
	cmd.AddCommand(expenseRemoveCommand())
	cmd.AddCommand(expenseReceiptsCommand())
	return cmd
}

func expenseAddCommand() *cobra.Command {
	var (
		input    settle.ExpenseInput
		mode     string
		receipts []string
	)
	cmd := &cobra.Command{
		Use:   "add <event>",
		Short: "Record an expense; participants default to the whole roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			eventID := args[0]
			if len(input.Participants) == 0 {
				members, err := core.Members(cmd.Context(), eventID)
				if err != nil {
					return err
				}
				input.Participants = models.MemberNames(members)
			}
			input.SplitMode = models.SplitMode(mode)

			for _, path := range receipts {
				upload, err := readReceiptFile(core, path)
				if err != nil {
					return err
				}
				input.Receipts = append(input.Receipts, upload)
			}

			expense, err := core.AddExpense(cmd.Context(), eventID, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render(fmt.Sprintf(
				"added %s: %s paid %s for %d",
				expense.ID, expense.Payer, export.FormatAmount(expense.Amount), len(expense.Participants),
			)))
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Payer, "payer", "", "who paid (roster member or guest)")
	cmd.Flags().StringVar(&input.Item, "item", "", "what was paid for")
	cmd.Flags().Float64Var(&input.Amount, "amount", 0, "amount paid")
	cmd.Flags().StringSliceVar(&input.Participants, "participants", nil, "comma separated participants")
	cmd.Flags().StringVar(&mode, "split", string(models.SplitEqual), "split mode")
	cmd.Flags().StringVar(&input.Note, "note", "", "free-text note")
	cmd.Flags().StringArrayVar(&receipts, "receipt", nil, "receipt image file, repeatable")
	cmd.MarkFlagRequired("payer")
	cmd.MarkFlagRequired("item")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func readReceiptFile(core *settle.Service, path string) (settle.ReceiptUpload, error) {
	f, err := os.Open(path)
	if err != nil {
		return settle.ReceiptUpload{}, fmt.Errorf("failed to open receipt: %w", err)
	}
	defer f.Close()
	return core.ReadReceipt(filepath.Base(path), f)
}

func expenseListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <event>",
		Short: "List the ledger with positions for removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := core.Expenses(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(expenses))
			for i, e := range expenses {
				rows[i] = []string{
					strconv.Itoa(i),
					e.ID,
					e.Payer,
					e.Item,
					strings.Join(e.Participants, ", "),
					e.Note,
					strconv.Itoa(len(e.ReceiptPaths)),
					export.FormatAmount(e.Amount),
				}
			}
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:     []string{"#", "id", "payer", "item", "participants", "note", "receipts", "amount"},
				rows:        rows,
				numericFrom: 7,
			})
			return nil
		},
	}
}

func expenseRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <event> <index>",
		Short: "Remove the expense at a position shown by expense list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}

			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := core.RemoveExpense(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("removed "+removed.ID))
			return nil
		},
	}
}

func expenseReceiptsCommand() *cobra.Command {
	var expenseID string
	cmd := &cobra.Command{
		Use:   "receipts <event>",
		Short: "List stored receipts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := core.Receipts(cmd.Context(), args[0], expenseID)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, e := range expenses {
				for _, ref := range e.ReceiptPaths {
					rows = append(rows, []string{e.ID, e.Item, ref})
				}
			}
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:     []string{"expense", "item", "receipt"},
				rows:        rows,
				numericFrom: -1,
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&expenseID, "expense", "", "only this expense")
	return cmd
}
