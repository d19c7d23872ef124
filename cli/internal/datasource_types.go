package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const datasourceTypesAPI = "/datasource_types"

func newDatasourceTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasource-types",
		Short: "Manage datasource types",
	}

	cmd.AddCommand(folderCommands(datasourceTypesAPI, false)...)
	cmd.AddCommand(newDSTypesListCommand())
	cmd.AddCommand(newDSTypesGetCommand())
	cmd.AddCommand(newDSTypesCreateCommand())
	cmd.AddCommand(newDSTypesUpdateCommand())
	cmd.AddCommand(newDSTypesDeleteCommand())
	cmd.AddCommand(newDSTypesSearchCommand())
	cmd.AddCommand(newDSTypesListPropertiesCommand())
	cmd.AddCommand(newDSTypesCreatePropertyCommand())
	cmd.AddCommand(newDSTypesUpdatePropertyCommand())
	cmd.AddCommand(newDSTypesDeletePropertyCommand())
	cmd.AddCommand(newDSTypesListMethodsCommand())
	cmd.AddCommand(newDSTypesGetMethodCommand())
	cmd.AddCommand(newDSTypesGetMethodCodeCommand())
	cmd.AddCommand(newDSTypesCreateMethodCommand())
	cmd.AddCommand(newDSTypesUpdateMethodCommand())
	cmd.AddCommand(newDSTypesDeleteMethodCommand())
	cmd.AddCommand(newDSTypesListParamsCommand())
	cmd.AddCommand(newDSTypesCreateParamCommand())
	cmd.AddCommand(newDSTypesUpdateParamCommand())
	cmd.AddCommand(newDSTypesDeleteParamCommand())

	return cmd
}

func typeIDQuery(id int) url.Values {
	params := url.Values{}
	params.Set("mds_type_id", strconv.Itoa(id))
	return params
}

func methodIDQuery(id int) url.Values {
	params := url.Values{}
	params.Set("method_id", strconv.Itoa(id))
	return params
}

type dsTypeSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	FolderID    *int   `json:"folder"`
}

func newDSTypesListCommand() *cobra.Command {
	var folderID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all datasource types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			_, paths, err := fetchFolders(cmd.Context(), cli.Client, datasourceTypesAPI)
			if err != nil {
				return err
			}

			raw, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/ds_type/", nil)
			if err != nil {
				return err
			}
			var types []dsTypeSummary
			if err := json.Unmarshal(raw, &types); err != nil {
				return fmt.Errorf("unexpected datasource type list response: %w", err)
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

func newDSTypesGetCommand() *cobra.Command {
	var (
		includeProperties bool
		includeMethods    bool
	)

	cmd := &cobra.Command{
		Use:   "get TYPE_ID",
		Short: "Get a datasource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("datasource type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			dsType, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/ds_type/%d/", datasourceTypesAPI, id), nil)
			if err != nil {
				return err
			}

			result := map[string]any{"type": dsType}

			if includeProperties {
				properties, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/properties/", typeIDQuery(id))
				if err != nil {
					return err
				}
				result["properties"] = properties
			}

			if includeMethods {
				raw, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method/", typeIDQuery(id))
				if err != nil {
					return err
				}
				var methods []map[string]any
				if err := json.Unmarshal(raw, &methods); err != nil {
					return fmt.Errorf("unexpected method list response: %w", err)
				}
				// Method code is omitted here; get-method-code fetches it.
				for _, method := range methods {
					if _, ok := method["code"]; ok {
						method["code"] = "[FILTERED]"
					}
					methodID, ok := method["id"].(float64)
					if !ok {
						continue
					}
					params, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method_params/", methodIDQuery(int(methodID)))
					if err != nil {
						return err
					}
					method["parameters"] = params
				}
				result["methods"] = methods
			}

			return printJSON(result)
		},
	}

	cmd.Flags().BoolVar(&includeProperties, "include-properties", false, "Include properties")
	cmd.Flags().BoolVar(&includeMethods, "include-methods", false, "Include methods with their parameters")
	return cmd
}

func newDSTypesCreateCommand() *cobra.Command {
	var (
		name        string
		description string
		version     string
		folderID    int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a datasource type",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"name":        name,
				"description": description,
				"version":     version,
			}
			if folderID > 0 {
				data["folder"] = folderID
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), datasourceTypesAPI+"/ds_type/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Type name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&version, "version", "1.0", "Version")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "Folder ID")
	cmd.MarkFlagRequired("name") //nolint:errcheck

	return cmd
}

func newDSTypesUpdateCommand() *cobra.Command {
	var (
		name        string
		description string
		version     string
		folderID    int
	)

	cmd := &cobra.Command{
		Use:   "update TYPE_ID",
		Short: "Update a datasource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("datasource type", args[0])
			if err != nil {
				return err
			}

			data := map[string]any{}
			if name != "" {
				data["name"] = name
			}
			if cmd.Flags().Changed("description") {
				data["description"] = description
			}
			if version != "" {
				data["version"] = version
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
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/ds_type/%d/", datasourceTypesAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&version, "version", "", "New version")
	cmd.Flags().IntVar(&folderID, "folder-id", 0, "New folder ID (0 to move to the root)")

	return cmd
}

func newDSTypesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE_ID",
		Short: "Delete a datasource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("datasource type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/ds_type/%d/", datasourceTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Datasource type %d deleted\n", id)
			return nil
		},
	}
}

func newDSTypesSearchCommand() *cobra.Command {
	var (
		query         string
		searchIn      string
		caseSensitive bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search datasource types by name or method code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if searchIn != "name" && searchIn != "code" && searchIn != "both" {
				return fmt.Errorf("invalid --search-in %q (must be name, code or both)", searchIn)
			}

			needle := query
			if !caseSensitive {
				needle = strings.ToLower(needle)
			}
			matches := func(s string) bool {
				if !caseSensitive {
					s = strings.ToLower(s)
				}
				return strings.Contains(s, needle)
			}

			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/ds_type/", nil)
			if err != nil {
				return err
			}
			var types []dsTypeSummary
			if err := json.Unmarshal(raw, &types); err != nil {
				return fmt.Errorf("unexpected datasource type list response: %w", err)
			}

			type methodRef struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			}
			type match struct {
				ID             int         `json:"id"`
				Name           string      `json:"name"`
				MatchedIn      string      `json:"matched_in"`
				MatchedMethods []methodRef `json:"matched_methods,omitempty"`
			}
			var results []match

			for _, t := range types {
				if (searchIn == "name" || searchIn == "both") && matches(t.Name) {
					results = append(results, match{ID: t.ID, Name: t.Name, MatchedIn: "name"})
					continue
				}
				if searchIn != "code" && searchIn != "both" {
					continue
				}

				methodsRaw, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method/", typeIDQuery(t.ID))
				if err != nil {
					return err
				}
				var methods []struct {
					ID   int    `json:"id"`
					Name string `json:"name"`
					Code string `json:"code"`
				}
				if err := json.Unmarshal(methodsRaw, &methods); err != nil {
					return fmt.Errorf("unexpected method list response: %w", err)
				}

				var matched []methodRef
				for _, m := range methods {
					if matches(m.Code) {
						matched = append(matched, methodRef{ID: m.ID, Name: m.Name})
					}
				}
				if len(matched) > 0 {
					results = append(results, match{ID: t.ID, Name: t.Name, MatchedIn: "code", MatchedMethods: matched})
				}
			}

			return printJSON(map[string]any{"results": results, "count": len(results)})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search query (substring)")
	cmd.Flags().StringVar(&searchIn, "search-in", "name", "Where to search (name, code, both)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Case-sensitive search")
	cmd.MarkFlagRequired("query") //nolint:errcheck

	return cmd
}

// Properties

func newDSTypesListPropertiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-properties TYPE_ID",
		Short: "List properties of a datasource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("datasource type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			properties, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/properties/", typeIDQuery(id))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"properties": properties})
		},
	}
}

func newDSTypesCreatePropertyCommand() *cobra.Command {
	var (
		typeID       int
		name         string
		label        string
		valueTypeID  int
		sectionID    int
		description  string
		defaultValue string
		required     bool
		hidden       bool
	)

	cmd := &cobra.Command{
		Use:   "create-property",
		Short: "Create a datasource type property",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"mds_type_id":     typeID,
				"name":            name,
				"label":           label,
				"value_type_id":   valueTypeID,
				"section_name_id": sectionID,
				"description":     description,
				"default_value":   defaultValue,
				"is_required":     required,
				"is_hidden":       hidden,
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), datasourceTypesAPI+"/properties/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&typeID, "type-id", 0, "Datasource type ID")
	cmd.Flags().StringVar(&name, "name", "", "Property display name")
	cmd.Flags().StringVar(&label, "label", "", "Property label (variable name in code)")
	cmd.Flags().IntVar(&valueTypeID, "value-type-id", 0, "Value type ID")
	cmd.Flags().IntVar(&sectionID, "section-id", 0, "Section ID")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "Default value")
	cmd.Flags().BoolVar(&required, "is-required", false, "Is required")
	cmd.Flags().BoolVar(&hidden, "is-hidden", false, "Is hidden")
	cmd.MarkFlagRequired("type-id")       //nolint:errcheck
	cmd.MarkFlagRequired("name")          //nolint:errcheck
	cmd.MarkFlagRequired("label")         //nolint:errcheck
	cmd.MarkFlagRequired("value-type-id") //nolint:errcheck
	cmd.MarkFlagRequired("section-id")    //nolint:errcheck

	return cmd
}

func newDSTypesUpdatePropertyCommand() *cobra.Command {
	var (
		name         string
		label        string
		description  string
		defaultValue string
		required     bool
		hidden       bool
	)

	cmd := &cobra.Command{
		Use:   "update-property PROPERTY_ID",
		Short: "Update a datasource type property",
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
				data["is_required"] = required
			}
			if cmd.Flags().Changed("is-hidden") {
				data["is_hidden"] = hidden
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/properties/%d/", datasourceTypesAPI, id), data)
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
	cmd.Flags().BoolVar(&required, "is-required", false, "Is required")
	cmd.Flags().BoolVar(&hidden, "is-hidden", false, "Is hidden")

	return cmd
}

func newDSTypesDeletePropertyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-property PROPERTY_ID",
		Short: "Delete a datasource type property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/properties/%d/", datasourceTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Property %d deleted\n", id)
			return nil
		},
	}
}

// Methods

func newDSTypesListMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-methods TYPE_ID",
		Short: "List methods of a datasource type (without code)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("datasource type", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method/", typeIDQuery(id))
			if err != nil {
				return err
			}

			var methods []map[string]any
			if err := json.Unmarshal(raw, &methods); err != nil {
				return fmt.Errorf("unexpected method list response: %w", err)
			}
			for _, method := range methods {
				if _, ok := method["code"]; ok {
					method["code"] = "[FILTERED] Use get-method-code to see code"
				}
			}
			return printJSON(map[string]any{"methods": methods})
		},
	}
}

func newDSTypesGetMethodCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-method METHOD_ID",
		Short: "Get a method with its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("method", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			method, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/method/%d/", datasourceTypesAPI, id), nil)
			if err != nil {
				return err
			}
			params, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method_params/", methodIDQuery(id))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"method": method, "parameters": params})
		},
	}
}

func newDSTypesGetMethodCodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-method-code METHOD_ID",
		Short: "Get only the method code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("method", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			raw, err := cli.Client.Get(cmd.Context(), fmt.Sprintf("%s/method/%d/", datasourceTypesAPI, id), nil)
			if err != nil {
				return err
			}

			var method struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(raw, &method); err != nil {
				return fmt.Errorf("unexpected method response: %w", err)
			}
			fmt.Println(method.Code)
			return nil
		},
	}
}

func newDSTypesCreateMethodCommand() *cobra.Command {
	var (
		typeID      int
		name        string
		label       string
		code        string
		codeFile    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create-method",
		Short: "Create a method",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readCode(code, codeFile)
			if err != nil {
				return err
			}
			if body == "" {
				body = "# Method code\npass"
			}
			data := map[string]any{
				"mds_type_id": typeID,
				"name":        name,
				"label":       label,
				"code":        body,
				"description": description,
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), datasourceTypesAPI+"/method/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&typeID, "type-id", 0, "Datasource type ID")
	cmd.Flags().StringVar(&name, "name", "", "Method display name")
	cmd.Flags().StringVar(&label, "label", "", "Method label (callable name in code)")
	cmd.Flags().StringVar(&code, "code", "", "Method code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.MarkFlagRequired("type-id") //nolint:errcheck
	cmd.MarkFlagRequired("name")    //nolint:errcheck
	cmd.MarkFlagRequired("label")   //nolint:errcheck
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newDSTypesUpdateMethodCommand() *cobra.Command {
	var (
		name        string
		label       string
		code        string
		codeFile    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update-method METHOD_ID",
		Short: "Update a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("method", args[0])
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
			body, err := readCode(code, codeFile)
			if err != nil {
				return err
			}
			if body != "" {
				data["code"] = body
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/method/%d/", datasourceTypesAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&label, "label", "", "New label")
	cmd.Flags().StringVar(&code, "code", "", "New code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "Read code from file")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func newDSTypesDeleteMethodCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-method METHOD_ID",
		Short: "Delete a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("method", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/method/%d/", datasourceTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Method %d deleted\n", id)
			return nil
		},
	}
}

// Method parameters

func newDSTypesListParamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-params METHOD_ID",
		Short: "List parameters of a method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("method", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			params, err := cli.Client.Get(cmd.Context(), datasourceTypesAPI+"/method_params/", methodIDQuery(id))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"parameters": params})
		},
	}
}

func newDSTypesCreateParamCommand() *cobra.Command {
	var (
		methodID     int
		label        string
		valueTypeID  int
		inputType    string
		defaultValue string
		description  string
		hidden       bool
	)

	cmd := &cobra.Command{
		Use:   "create-param",
		Short: "Create a method parameter",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"method_id":     methodID,
				"label":         label,
				"value_type_id": valueTypeID,
				"input_type":    inputType,
				"default_value": defaultValue,
				"description":   description,
				"is_hidden":     hidden,
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Post(cmd.Context(), datasourceTypesAPI+"/method_params/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&methodID, "method-id", 0, "Method ID")
	cmd.Flags().StringVar(&label, "label", "", "Parameter label")
	cmd.Flags().IntVar(&valueTypeID, "value-type-id", 0, "Value type ID")
	cmd.Flags().StringVar(&inputType, "input-type", "", "Parameter direction (in or out)")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "Default value")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().BoolVar(&hidden, "is-hidden", false, "Is hidden")
	cmd.MarkFlagRequired("method-id")     //nolint:errcheck
	cmd.MarkFlagRequired("label")         //nolint:errcheck
	cmd.MarkFlagRequired("value-type-id") //nolint:errcheck
	cmd.MarkFlagRequired("input-type")    //nolint:errcheck

	return cmd
}

func newDSTypesUpdateParamCommand() *cobra.Command {
	var (
		label        string
		defaultValue string
		description  string
		hidden       bool
	)

	cmd := &cobra.Command{
		Use:   "update-param PARAM_ID",
		Short: "Update a method parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("parameter", args[0])
			if err != nil {
				return err
			}

			data := map[string]any{}
			if label != "" {
				data["label"] = label
			}
			if cmd.Flags().Changed("default-value") {
				data["default_value"] = defaultValue
			}
			if cmd.Flags().Changed("description") {
				data["description"] = description
			}
			if cmd.Flags().Changed("is-hidden") {
				data["is_hidden"] = hidden
			}
			if len(data) == 0 {
				return fmt.Errorf("no changes specified")
			}

			cli := getCliContext(cmd)
			result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/method_params/%d/", datasourceTypesAPI, id), data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "New label")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "New default value")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().BoolVar(&hidden, "is-hidden", false, "Is hidden")

	return cmd
}

func newDSTypesDeleteParamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-param PARAM_ID",
		Short: "Delete a method parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("parameter", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/method_params/%d/", datasourceTypesAPI, id)); err != nil {
				return err
			}
			fmt.Printf("Parameter %d deleted\n", id)
			return nil
		},
	}
}
