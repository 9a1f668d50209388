package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func eventCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Create, list and delete events",
	}
	cmd.AddCommand(eventCreateCommand())
	cmd.AddCommand(eventListCommand())
	cmd.AddCommand(eventShowCommand())
	cmd.AddCommand(eventDeleteCommand())
	return cmd
}

func eventCreateCommand() *cobra.Command {
	var title, start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event, seeding the default roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := core.CreateEvent(cmd.Context(), title, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func eventListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := core.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no events yet"))
				return nil
			}

			rows := make([][]string, len(events))
			for i, e := range events {
				rows[i] = []string{e.ID, e.Label(), e.CreatedAt}
			}
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:     []string{"id", "event", "created"},
				rows:        rows,
				numericFrom: -1,
			})
			return nil
		},
	}
}

func eventShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <event>",
		Short: "Show an event with its roster and ledger size",
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
			fmt.Fprintln(out, headerStyle.Render(st.Event.Label()))
			fmt.Fprintf(out, "id:       %s\n", st.Event.ID)
			fmt.Fprintf(out, "created:  %s\n", st.Event.CreatedAt)
			fmt.Fprintf(out, "members:  %d\n", len(st.Members))
			fmt.Fprintf(out, "expenses: %d\n", len(st.Expenses))
			if len(st.Dangling) > 0 {
				fmt.Fprintln(out, badStyle.Render(fmt.Sprintf("%d name(s) not on the roster, run reconcile", len(st.Dangling))))
			}
			return nil
		},
	}
}

func eventDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event>",
		Short: "Delete an event with its members, expenses and receipts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := core.DeleteEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("event %s does not exist", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("deleted "+args[0]))
			return nil
		},
	}
}
