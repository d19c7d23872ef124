package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"
)

const activatorTypesAPI = "/activator-types"

// defaultActivatorCode is what new activator types start with when no code
// is supplied: the sandbox exposes print_help() to enumerate its variables.
const defaultActivatorCode = "# Print all built-in variables and functions for help\nprint_help()"

func newActivatorTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activator-types",
		Short: "Manage activator types",
	}

	cmd.AddCommand(folderCommands(activatorTypesAPI, true)...)
	cmd.AddCommand(newActivatorTypesListCommand())
	cmd.AddCommand(newActivatorTypesGetCommand())
	cmd.AddCommand(newActivatorTypesGetCodeCommand())
	cmd.AddCommand(newActivatorTypesCreateCommand())
	cmd.AddCommand(newActivatorTypesUpdateCommand())
	cmd.AddCommand(newActivatorTypesDeleteCommand())
	cmd.AddCommand(newActivatorTypesSearchCommand())
	cmd.AddCommand(newActivatorTypesListPropertiesCommand())
	cmd.AddCommand(newActivatorTypesCreatePropertyCommand())
	cmd.AddCommand(newActivatorTypesUpdatePropertyCommand())
	cmd.AddCommand(newActivatorTypesDeletePropertyCommand())

	return cmd
}

type activatorTypeSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	// The activator type API names its folder field "folder", unlike
	// scripts which use "folder_id".
	FolderID *int `json:"folder"`
}

func newActivatorTypesListCommand() *cobra.Command {
	var folderID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all activator types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			_, paths, err := fetchFolders(cmd.Context(), cli.Client, activatorTypesAPI)
			if err != nil {
				return err
			}

			raw, err := cli.Client.Get(cmd.Context(), activatorTypesAPI+"/activator-type/", nil)
			if err != nil {
				return err
			}
			var types []activatorTypeSummary
			if err := json.Unmarshal(raw, &types); err != nil {
				return fmt.Errorf("unexpected activator type list response: %w", err)
			}

			type entry struct {
				ID          int    `json:"id"`
				Name        string `json:"name"`
				Description string `json:"description"`
				Version     string `json:"version"`
				FolderPath  string `json:"folder_path"`
				FolderID    *int   `json:"folder_id"`
			}
			result := make([]entry, 0, len(types))
			for _, t := range types {
				if folderID > 0 && (t.FolderID == nil || *t.FolderID != folderID) {
					continue
				}
				path := "/"
				if t.FolderID != nil {
					if p, ok := paths[*t.FolderID]; ok {
						path = p
					}
				}
				result = append(result, entry{
					ID:          t.ID,
					Name:        t.Name,
					Description: t.Description,
					Version:     t.Version,
					FolderPath:  path,
					FolderID:    t.FolderID,
				})
			}

			return printJSON(map[string]any{"types": result})
		},
	}

	cmd.Flags().IntVar(&folderID, "folder-id", 0, "Filter by folder ID")
	return cmd
}

func newActivatorTypesGetCommand() *cobra.Command {
	var (
		includeCode  bool
		noProperties bool
	)

	cmd := &cobra.Command{
		Use:   "get TYPE_ID",
		Short: "Get an activator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("activator type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/activator-type/%d/", activatorTypesAPI, id), nil)
			if err != nil {
				return err
			}

			var actType map[string]any
			if err := json.Unmarshal(raw, &actType); err != nil {
				return fmt.Errorf("unexpected activator type response: %w", err)
			}
			if !includeCode {
				actType["code"] = "[FILTERED] Use --include-code or the get-code command"
			}

			result := map[string]any{"type": actType}
			if !noProperties {
				params := url.Values{}
				params.Set("activator_type_id", strconv.Itoa(id))
				properties, err := cli.Client.Get(cmd.Context(), activatorTypesAPI+"/property/", params)
				if err != nil {
					return err
				}
				result["properties"] = properties
			}

			return printJSON(result)
		},
	}

	cmd.Flags().BoolVar(&includeCode, "include-code", false, "Include code in output")
	cmd.Flags().BoolVar(&noProperties, "no-properties", false, "Exclude properties")
	return cmd
}

func newActivatorTypesGetCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-code TYPE_ID",
		Short: "Get only the activator type code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("activator type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/activator-type/%d/", activatorTypesAPI, id), nil)
			if err != nil {
				return err
			}

			var actType struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(raw, &actType); err != nil {
				return fmt.Errorf("unexpected activator type response: %w", err)
			}
			fmt.Println(actType.Code)
			return nil
		},
	}
}

func newActivatorTypesCreateCommand() *cobra.Command {
	var (
		name        string
		code        string
		codeFile    string
		description string
		version     string
		folderID    int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activator type",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readCode(code, codeFile)
			if err != nil {
				return err
			}
			if body == "" {
				body = defaultActivatorCode
			}
			data := map[string]any{
				"name":    name,
				"code":    body,
				"version": version,
			}
			if description != "" {
				data["description"] = description
			}
			if folderID > 0 {
				data["folder"] = folderID
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), activatorTypesAPI+"/activator-type/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Type name")
	cmd.Flags().StringVar(&code, "code", "", "Activator code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&version, "version", "1.0", "Version")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "Folder ID")
	cmd.MarkFlagRequired("name") //nolint:errcheck
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newActivatorTypesUpdateCommand() *cobra.Command {
	var (
		name        string
		code        string
		codeFile    string
		description string
		version     string
		folderID    int
	)

	cmd := &cobra.Command{
		Use:   "update TYPE_ID",
		Short: "Update an activator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("activator type", args[0])
			if err != nil {
				return err
			}

			data := map[string]any{}
			if name != "" {
				data["name"] = name
			}
			if description != "" {
				data["description"] = description
			}
			if version != "" {
				data["version"] = version
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
					data["folder"] = folderID
				} else {
					data["folder"] = nil
				}
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/activator-type/%d/", activatorTypesAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&code, "code", "", "New code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&version, "version", "", "New version")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "New folder ID (0 to move to the root)")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newActivatorTypesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE_ID",
		Short: "Delete an activator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("activator type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/activator-type/%d/", activatorTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Activator type %d deleted\n", id)
			return nil
		},
	}
}

func newActivatorTypesSearchCommand() *cobra.Command {
	var (
		query         string
		searchIn      string
		caseSensitive bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search activator types by name or code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if searchIn != "name" && searchIn != "code" && searchIn != "both" {
				return fmt.Errorf("invalid --search-in %q (must be name, code or both)", searchIn)
			}

			pattern := query
			if !caseSensitive {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("invalid search query: %w", err)
			}

			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), activatorTypesAPI+"/activator-type/", nil)
			if err != nil {
				return err
			}
			var types []activatorTypeSummary
			if err := json.Unmarshal(raw, &types); err != nil {
				return fmt.Errorf("unexpected activator type list response: %w", err)
			}

			type match struct {
				ID          int    `json:"id"`
				Name        string `json:"name"`
				Description string `json:"description"`
				MatchedIn   string `json:"matched_in"`
			}
			var results []match
			found := map[int]bool{}

			if searchIn == "name" || searchIn == "both" {
				for _, t := range types {
					if re.MatchString(t.Name) {
						results = append(results, match{ID: t.ID, Name: t.Name, Description: t.Description, MatchedIn: "name"})
						found[t.ID] = true
					}
				}
			}

			// Code search needs the full object per type; only fetch the
			// ones not already matched by name.
			if searchIn == "code" || searchIn == "both" {
				for _, t := range types {
					if found[t.ID] {
						continue
					}
					fullRaw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/activator-type/%d/", activatorTypesAPI, t.ID), nil)
					if err != nil {
						return err
					}
					var full struct {
						Code string `json:"code"`
					}
					if err := json.Unmarshal(fullRaw, &full); err != nil {
						return fmt.Errorf("unexpected activator type response: %w", err)
					}
					if re.MatchString(full.Code) {
						results = append(results, match{ID: t.ID, Name: t.Name, Description: t.Description, MatchedIn: "code"})
					}
				}
			}

			return printJSON(map[string]any{"results": results, "count": len(results)})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search query (regex)")
	cmd.Flags().StringVar(&searchIn, "search-in", "name", "Where to search (name, code, both)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Case-sensitive search")
	cmd.MarkFlagRequired("query") //nolint:errcheck

	return cmd
}

func newActivatorTypesListPropertiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-properties TYPE_ID",
		Short: "List properties of an activator type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("activator type", args[0])
			if err != nil {
				return err
			}
			params := url.Values{}
			params.Set("activator_type_id", strconv.Itoa(id))

			cli := getCliContext(cmd)
			properties, err := cli.Client.Get(cmd.Context(), activatorTypesAPI+"/property/", params)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"properties": properties})
		},
	}
}

func newActivatorTypesCreatePropertyCommand() *cobra.Command {
	var (
		typeID             int
		name               string
		label              string
		valueTypeID        int
		sectionID          int
		description        string
		defaultValue       string
		isRequired         bool
		isHidden           bool
		defaultDictValueID int
	)

	cmd := &cobra.Command{
		Use:   "create-property",
		Short: "Create an activator type property",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"activator_type_id": typeID,
				"name":              name,
				"label":             label,
				"value_type_id":     valueTypeID,
				"section_name_id":   sectionID,
			}
			if description != "" {
				data["description"] = description
			}
			if defaultValue != "" {
				data["default_value"] = defaultValue
			}
			if isRequired {
				data["is_required"] = true
			}
			if isHidden {
				data["is_hidden"] = true
			}
			if defaultDictValueID > 0 {
				data["default_dict_value_id"] = defaultDictValueID
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), activatorTypesAPI+"/property/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&typeID, "type-id", 0, "Activator type ID")
	cmd.Flags().StringVar(&name, "name", "", "Property display name")
	cmd.Flags().StringVar(&label, "label", "", "Property label (variable name in code)")
	cmd.Flags().IntVar(&valueTypeID, "value-type-id", 0, "Value type ID")
	cmd.Flags().IntVar(&sectionID, "section-id", 0, "Section ID")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "Default value")
	cmd.Flags().BoolVar(&isRequired, "is-required", false, "Is required")
	cmd.Flags().BoolVar(&isHidden, "is-hidden", false, "Is hidden")
	cmd.Flags().IntVar(&defaultDictValueID, "default-dict-value-id", 0, "Default dictionary value ID")
	cmd.MarkFlagRequired("type-id")       //nolint:errcheck
	cmd.MarkFlagRequired("name")          //nolint:errcheck
	cmd.MarkFlagRequired("label")         //nolint:errcheck
	cmd.MarkFlagRequired("value-type-id") //nolint:errcheck
	cmd.MarkFlagRequired("section-id")    //nolint:errcheck

	return cmd
}

func newActivatorTypesUpdatePropertyCommand() *cobra.Command {
	var (
		name         string
		label        string
		description  string
		defaultValue string
		isRequired   bool
		isHidden     bool
	)

	cmd := &cobra.Command{
		Use:   "update-property PROPERTY_ID",
		Short: "Update an activator type property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}

			data := map[string]any{}
			if name != "" {
				data["name"] = name
			}
			if label != "" {
				data["label"] = label
			}
			if cmd.Flags().Changed("description") {
				data["description"] = description
			}
			if cmd.Flags().Changed("default-value") {
				data["default_value"] = defaultValue
			}
			if cmd.Flags().Changed("is-required") {
				data["is_required"] = isRequired
			}
			if cmd.Flags().Changed("is-hidden") {
				data["is_hidden"] = isHidden
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/property/%d/", activatorTypesAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&label, "label", "", "New label")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "New default value")
	cmd.Flags().BoolVar(&isRequired, "is-required", false, "Is required")
	cmd.Flags().BoolVar(&isHidden, "is-hidden", false, "Is hidden")

	return cmd
}

func newActivatorTypesDeletePropertyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-property PROPERTY_ID",
		Short: "Delete an activator type property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/property/%d/", activatorTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Property %d deleted\n", id)
			return nil
		},
	}
}
