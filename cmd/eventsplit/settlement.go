package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/export"
)

func matrixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix <event>",
		Short: "Show the expense-by-member settlement matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := core.Matrix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := export.DisplayRows(m)
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:      rows[0],
				rows:         rows[1:],
				numericFrom:  2,
				lastRowTotal: true,
			})
			return nil
		},
	}
}

func balancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <event>",
		Short: "Show what each member paid and owes, and who pays whom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := core.Settle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, len(st.Balances))
			for i, b := range st.Balances {
				name := b.Name
				if !b.OnRoster {
					name += " (guest)"
				}
				net := export.FormatAmount(b.NetBalance)
				switch {
				case b.NetBalance > 0.005:
					net = goodStyle.Render("+" + net)
				case b.NetBalance < -0.005:
					net = badStyle.Render(net)
				}
				rows[i] = []string{name, b.PayTo, export.FormatAmount(b.TotalPaid), export.FormatAmount(b.TotalOwed), net}
			}
			renderTable(out, tableLayout{
				headers:     []string{"member", "pay to", "paid", "owes", "net"},
				rows:        rows,
				numericFrom: 2,
			})

			if len(st.Transfers) == 0 {
				fmt.Fprintln(out, dimStyle.Render("everyone is settled"))
				return nil
			}
			transfers := make([][]string, len(st.Transfers))
			for i, t := range st.Transfers {
				transfers[i] = []string{t.From, t.To, t.PayTo, export.FormatAmount(t.Amount)}
			}
			renderTable(out, tableLayout{
				headers:     []string{"from", "to", "pay to", "amount"},
				rows:        transfers,
				numericFrom: 3,
			})
			return nil
		},
	}
}

func reconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <event>",
		Short: "List expense names that are not on the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := core.Settle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(st.Dangling) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("every name is on the roster"))
				return nil
			}
			rows := make([][]string, len(st.Dangling))
			for i, d := range st.Dangling {
				role := "participant"
				switch {
				case d.AsPayer && len(d.ExpenseIDs) > 0:
					role = "payer, participant"
				case d.AsPayer:
					role = "payer"
				}
				rows[i] = []string{d.Name, role, strings.Join(d.ExpenseIDs, ", "), d.Suggestion}
			}
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:     []string{"name", "as", "expenses", "did you mean"},
				rows:        rows,
				numericFrom: -1,
			})
			return nil
		},
	}
}
