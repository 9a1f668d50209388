package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/eventsplit/internal/models"
)

func memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage an event roster",
	}
	cmd.AddCommand(memberListCommand())
	cmd.AddCommand(memberAddCommand())
	cmd.AddCommand(memberUpdateCommand())
	cmd.AddCommand(memberRemoveCommand())
	return cmd
}

func memberListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <event>",
		Short: "List the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			members, err := core.Members(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(members))
			for i, m := range members {
				rows[i] = []string{m.Name, m.PayTo}
			}
			renderTable(cmd.OutOrStdout(), tableLayout{
				headers:     []string{"name", "pay to"},
				rows:        rows,
				numericFrom: -1,
			})
			return nil
		},
	}
}

func memberAddCommand() *cobra.Command {
	var payTo string
	cmd := &cobra.Command{
		Use:   "add <event> <name>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := core.AddMember(cmd.Context(), args[0], models.Member{Name: args[1], PayTo: payTo})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("added "+m.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&payTo, "pay-to", "", "payment destination")
	return cmd
}

func memberUpdateCommand() *cobra.Command {
	var name, payTo string
	cmd := &cobra.Command{
		Use:   "update <event> <name>",
		Short: "Rename a member or change the payment destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			members, err := core.Members(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated := models.Member{Name: args[1]}
			for _, m := range members {
				if m.Name == args[1] {
					updated = m
				}
			}
			if cmd.Flags().Changed("name") {
				updated.Name = name
			}
			if cmd.Flags().Changed("pay-to") {
				updated.PayTo = payTo
			}

			m, err := core.UpdateMember(cmd.Context(), args[0], args[1], updated)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render(fmt.Sprintf("updated %s (%s)", m.Name, m.PayTo)))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&payTo, "pay-to", "", "new payment destination")
	return cmd
}

func memberRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <event> <name>",
		Short: "Remove a member; recorded expenses keep the name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, store, _, err := openCore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := core.RemoveMember(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("removed "+args[1]))
			return nil
		},
	}
}
