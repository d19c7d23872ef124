package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

const scriptsAPI = "/scripts"

// codeFiltered replaces script bodies in summaries so LLM-facing output
// stays small.
const codeFiltered = "[FILTERED] Use --include-code to see code"

func newScriptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Manage automation scripts",
	}

	cmd.AddCommand(folderCommands(scriptsAPI, false)...)
	cmd.AddCommand(newScriptsListCommand())
	cmd.AddCommand(newScriptsGetCommand())
	cmd.AddCommand(newScriptsGetCodeCommand())
	cmd.AddCommand(newScriptsCreateCommand())
	cmd.AddCommand(newScriptsUpdateCommand())
	cmd.AddCommand(newScriptsDeleteCommand())
	cmd.AddCommand(newScriptsSearchCommand())

	return cmd
}

type scriptSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FolderID *int   `json:"folder_id"`
}

func newScriptsListCommand() *cobra.Command {
	var folderID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			_, paths, err := fetchFolders(cmd.Context(), cli.Client, scriptsAPI)
			if err != nil {
				return err
			}

			raw, err := cli.Client.Get(cmd.Context(), scriptsAPI+"/script/", nil)
			if err != nil {
				return err
			}
			var scripts []scriptSummary
			if err := json.Unmarshal(raw, &scripts); err != nil {
				return fmt.Errorf("unexpected script list response: %w", err)
			}

			type entry struct {
				ID         int    `json:"id"`
				Name       string `json:"name"`
				FolderPath string `json:"folder_path"`
				FolderID   *int   `json:"folder_id"`
			}
			result := make([]entry, 0, len(scripts))
			for _, s := range scripts {
				if folderID > 0 && (s.FolderID == nil || *s.FolderID != folderID) {
					continue
				}
				path := "/"
				if s.FolderID != nil {
					if p, ok := paths[*s.FolderID]; ok {
						path = p
					}
				}
				result = append(result, entry{ID: s.ID, Name: s.Name, FolderPath: path, FolderID: s.FolderID})
			}

			return printJSON(map[string]any{"scripts": result})
		},
	}

	cmd.Flags().IntVar(&folderID, "folder-id", 0, "Filter by folder ID")
	return cmd
}

func newScriptsGetCommand() *cobra.Command {
	var includeCode bool

	cmd := &cobra.Command{
		Use:   "get SCRIPT_ID",
		Short: "Get a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("script", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/script/%d/", scriptsAPI, id), nil)
			if err != nil {
				return err
			}

			var script map[string]any
			if err := json.Unmarshal(raw, &script); err != nil {
				return fmt.Errorf("unexpected script response: %w", err)
			}
			if !includeCode {
				script["code"] = codeFiltered
			}
			return printJSON(script)
		},
	}

	cmd.Flags().BoolVar(&includeCode, "include-code", false, "Include code in output")
	return cmd
}

func newScriptsGetCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-code SCRIPT_ID",
		Short: "Get only the script code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("script", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/script/%d/", scriptsAPI, id), nil)
			if err != nil {
				return err
			}

			var script struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(raw, &script); err != nil {
				return fmt.Errorf("unexpected script response: %w", err)
			}
			fmt.Println(script.Code)
			return nil
		},
	}
}

// readCode resolves the --code/--code-file pair.
func readCode(code, codeFile string) (string, error) {
	if code != "" {
		return code, nil
	}
	if codeFile != "" {
		data, err := os.ReadFile(codeFile)
		if err != nil {
			return "", fmt.Errorf("failed to read code file: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

func newScriptsCreateCommand() *cobra.Command {
	var (
		name     string
		code     string
		codeFile string
		folderID int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a script",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readCode(code, codeFile)
			if err != nil {
				return err
			}
			data := map[string]any{"name": name, "code": body}
			if folderID > 0 {
				data["folder_id"] = folderID
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), scriptsAPI+"/script/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Script name")
	cmd.Flags().StringVar(&code, "code", "", "Script code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "Folder ID")
	cmd.MarkFlagRequired("name") //nolint:errcheck
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newScriptsUpdateCommand() *cobra.Command {
	var (
		name     string
		code     string
		codeFile string
		folderID int
	)

	cmd := &cobra.Command{
		Use:   "update SCRIPT_ID",
		Short: "Update a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("script", args[0])
			if err != nil {
				return err
			}

			data := map[string]any{}
			if name != "" {
				data["name"] = name
			}
			body, err := readCode(code, codeFile)
			if err != nil {
				return err
			}
			if body != "" {
				data["code"] = body
			}
			if cmd.Flags().Changed("folder-id") {
				if folderID > 0 {
					data["folder_id"] = folderID
				} else {
					data["folder_id"] = nil
				}
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/script/%d/", scriptsAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&code, "code", "", "New code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "New folder ID (0 to move to the root)")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newScriptsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete SCRIPT_ID",
		Short: "Delete a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("script", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/script/%d/", scriptsAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Script %d deleted\n", id)
			return nil
		},
	}
}

func newScriptsSearchCommand() *cobra.Command {
	var (
		query         string
		caseSensitive bool
		exactMatch    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search scripts by code",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("search_code", query)
			params.Set("case_sensitive", strconv.FormatBool(caseSensitive))
			params.Set("exact_match", strconv.FormatBool(exactMatch))

			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), scriptsAPI+"/search_code/", params)
			if err != nil {
				return err
			}

			var results []json.RawMessage
			if err := json.Unmarshal(raw, &results); err != nil {
				return fmt.Errorf("unexpected search response: %w", err)
			}
			return printJSON(map[string]any{"results": results, "count": len(results)})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search query")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Case-sensitive search")
	cmd.Flags().BoolVar(&exactMatch, "exact-match", false, "Exact match")
	cmd.MarkFlagRequired("query") //nolint:errcheck

	return cmd
}
