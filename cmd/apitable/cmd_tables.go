package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/apitable/apitable-go-sdk/domain"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List, create and delete tables",
}

var tablesPage int

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tables, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := client.NewListSession(cmd.Context(), domain.NewStore())
		defer session.Close()

		if _, err := session.Dispatch(domain.LoadTableList{Page: tablesPage}).Wait(cmd.Context()); err != nil {
			return err
		}

		state := session.State()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFIELDS\tUPDATED")
		for _, table := range state.List {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", table.Id, table.Name, len(table.Fields), table.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		if state.HasMore {
			fmt.Printf("more tables on page %d\n", tablesPage+1)
		}
		return nil
	},
}

var tablesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := client.CreateTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(table.Id)
		return nil
	},
}

var tablesDeleteCmd = &cobra.Command{
	Use:   "delete <table-id>",
	Short: "Delete a table with its records and tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.DeleteTable(cmd.Context(), args[0])
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := client.RecentTables(cmd.Context())
		if err != nil {
			return err
		}
		for _, table := range tables {
			fmt.Printf("%s\t%s\n", table.Id, table.Name)
		}
		return nil
	},
}

func init() {
	tablesListCmd.Flags().IntVar(&tablesPage, "page", 1, "page to list")
	tablesCmd.AddCommand(tablesListCmd, tablesCreateCmd, tablesDeleteCmd)
}
