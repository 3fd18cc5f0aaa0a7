package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/apitable"
	"github.com/apitable/apitable-go-sdk/constants"
	"github.com/apitable/apitable-go-sdk/domain"
	"github.com/apitable/apitable-go-sdk/utils"
	"github.com/spf13/cobra"
)

var loadPage int

var loadCmd = &cobra.Command{
	Use:   "load <table-id>",
	Short: "Show a table's fields, records and tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		loaded, err := client.LoadTableRecords(ctx, args[0])
		if err != nil {
			return err
		}
		records := loaded.Records
		hasMore := loaded.HasMore
		if loadPage > 1 {
			more, err := client.LoadMoreTableRecords(ctx, args[0], loadPage)
			if err != nil {
				return err
			}
			records, hasMore = more.Records, more.HasMore
		}

		fmt.Printf("%s (%s) %d records, updated %s\n", loaded.Table.Name, loaded.Table.Id, loaded.RecordCount, loaded.Table.UpdatedAt.Format("2006-01-02 15:04:05"))
		printRecords(loaded.Table.FieldNames(), records)
		if hasMore {
			fmt.Printf("more records on page %d\n", loadPage+1)
		}
		for _, token := range loaded.Tokens {
			fmt.Printf("token %s writable=%t\n", token.Token, token.Writable)
		}
		return nil
	},
}

func printRecords(fields []string, records []*api.TableRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "_recordId\t"+strings.Join(fields, "\t"))
	for _, r := range records {
		values := make([]string, 0, len(fields)+1)
		values = append(values, r.Id)
		for _, field := range fields {
			values = append(values, utils.ToString(r.Data[field], ""))
		}
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	w.Flush()
}

var (
	editSet    []string
	editAdd    []string
	editDelete []string
)

var editCmd = &cobra.Command{
	Use:   "edit <table-id>",
	Short: "Change, add and delete records in one save",
	Long: `Change, add and delete records in one save.

  --set <record-id>.<field>=<value>   change a field of a record
  --add <field>=<value>,...           add a record
  --delete <record-id>                delete a record

Values are parsed as JSON when possible and kept as text otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := parseEdits(editSet, editAdd, editDelete)
		if err != nil {
			return err
		}

		session := client.NewEditSession(cmd.Context(), domain.NewStore())
		defer session.Close()

		if _, err := session.Dispatch(domain.LoadTableRecords{Id: args[0]}).Wait(cmd.Context()); err != nil {
			return err
		}
		session.Dispatch(domain.UpdateCache{Cache: cache})
		if _, err := session.Dispatch(domain.SaveTableRecords{
			Id:             args[0],
			Changes:        cache.Changes,
			CreatedRecords: cache.CreatedRecords,
			DeletedRecords: cache.DeletedRecords,
		}).Wait(cmd.Context()); err != nil {
			return err
		}

		state := session.State()
		fmt.Printf("saved %s at %s\n", state.Data.Name, state.Data.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func parseEdits(set, add, del []string) (domain.EditCache, error) {
	cache := domain.NewEditCache()
	for _, s := range set {
		key, value, ok := strings.Cut(s, "=")
		rowId, field, dotOk := strings.Cut(key, ".")
		if !ok || !dotOk || rowId == "" || field == "" {
			return cache, fmt.Errorf("invalid --set %q, want <record-id>.<field>=<value>", s)
		}
		if cache.Changes[rowId] == nil {
			cache.Changes[rowId] = make(map[string]interface{})
		}
		cache.Changes[rowId][field] = parseValue(value)
	}
	for i, a := range add {
		row := make(map[string]interface{})
		for _, pair := range strings.Split(a, ",") {
			field, value, ok := strings.Cut(pair, "=")
			if !ok || field == "" {
				return cache, fmt.Errorf("invalid --add %q, want <field>=<value>,...", a)
			}
			row[field] = parseValue(value)
		}
		cache.CreatedRecords[fmt.Sprintf("new-%04d", i)] = row
	}
	cache.DeletedRecords = append(cache.DeletedRecords, del...)
	return cache, nil
}

func parseValue(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

var (
	exportFilter string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <table-id>",
	Short: "Export a table's records as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		loaded, err := client.LoadTableRecords(ctx, args[0])
		if err != nil {
			return err
		}
		rows, err := client.ExportCSV(ctx, args[0], exportFilter)
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return apitable.WriteCSV(out, loaded.Table.FieldNames(), rows)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <table-id> <name>",
	Short: "Rename a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.RenameTable(cmd.Context(), args[0], args[1])
	},
}

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Add or remove table fields",
}

var (
	fieldType       string
	fieldAllowEmpty bool
)

var fieldAddCmd = &cobra.Command{
	Use:   "add <table-id> <name>",
	Short: "Add a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.AddTableField(cmd.Context(), args[0], api.Field{
			Name:       args[1],
			Type:       constants.FieldType(fieldType),
			AllowEmpty: fieldAllowEmpty,
		})
	},
}

var fieldRemoveCmd = &cobra.Command{
	Use:   "remove <table-id> <name>...",
	Short: "Remove fields",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.RemoveTableField(cmd.Context(), args[0], args[1:])
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage table access tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <table-id>",
	Short: "Issue a read only token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := client.IssueToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(token.Token)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Revoke a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.RevokeToken(cmd.Context(), args[0])
	},
}

var tokenWritableCmd = &cobra.Command{
	Use:   "writable <token> <true|false>",
	Short: "Allow or forbid writes with a token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		writable, err := strconv.ParseBool(args[1])
		if err != nil {
			return err
		}
		_, err = client.SetTokenWritability(cmd.Context(), args[0], writable)
		return err
	},
}

func init() {
	loadCmd.Flags().IntVar(&loadPage, "page", 1, "record page to show")

	editCmd.Flags().StringArrayVar(&editSet, "set", nil, "change a record field")
	editCmd.Flags().StringArrayVar(&editAdd, "add", nil, "add a record")
	editCmd.Flags().StringArrayVar(&editDelete, "delete", nil, "delete a record")

	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "only export records matching the expression, e.g. \"age > 30\"")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to a file instead of stdout")

	fieldAddCmd.Flags().StringVar(&fieldType, "type", string(constants.Field_Type_Text), "field type")
	fieldAddCmd.Flags().BoolVar(&fieldAllowEmpty, "allow-empty", false, "allow records without a value")
	fieldCmd.AddCommand(fieldAddCmd, fieldRemoveCmd)

	tokenCmd.AddCommand(tokenIssueCmd, tokenRevokeCmd, tokenWritableCmd)
}
