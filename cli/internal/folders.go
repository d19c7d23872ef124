package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/gimsctl/internal/gims"
	"github.com/devilmonastery/gimsctl/internal/pkg/folderpath"
)

// parseID converts a positional argument into a numeric resource id.
func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, arg)
	}
	return id, nil
}

// annotatedFolder is a folder entry enriched with its full path.
type annotatedFolder struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	ParentID *int   `json:"parent_folder_id"`
}

// fetchFolders lists the folder tree of a resource family and returns the
// id-to-path mapping alongside the annotated entries.
func fetchFolders(ctx context.Context, client *gims.Client, apiBase string) ([]annotatedFolder, map[int]string, error) {
	raw, err := client.Get(ctx, apiBase+"/folder/", nil)
	if err != nil {
		return nil, nil, err
	}

	var folders []folderpath.Folder
	if err := json.Unmarshal(raw, &folders); err != nil {
		return nil, nil, fmt.Errorf("unexpected folder list response: %w", err)
	}

	paths := folderpath.Build(folders)
	annotated := make([]annotatedFolder, 0, len(folders))
	for _, f := range folders {
		annotated = append(annotated, annotatedFolder{
			ID:       f.ID,
			Name:     f.Name,
			Path:     paths[f.ID],
			ParentID: f.ParentID,
		})
	}
	return annotated, paths, nil
}

// folderCommands builds the folder CRUD subcommands shared by every resource
// family. withUpdate adds update-folder for the families whose API supports
// renaming/moving folders.
func folderCommands(apiBase string, withUpdate bool) []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list-folders",
		Short: "List all folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			folders, _, err := fetchFolders(cmd.Context(), cli.Client, apiBase)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"folders": folders})
		},
	}

	var (
		createName     string
		createParentID int
	)
	createCmd := &cobra.Command{
		Use:   "create-folder",
		Short: "Create a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := getCliContext(cmd)
			data := map[string]any{"name": createName}
			if createParentID > 0 {
				data["parent_folder_id"] = createParentID
			}
			result, err := cli.Client.Post(cmd.Context(), apiBase+"/folder/", data)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	createCmd.Flags().StringVar(&createName, "name", "", "Folder name")
	createCmd.Flags().IntVar(&createParentID, "parent-folder-id", 0, "Parent folder ID")
	createCmd.MarkFlagRequired("name") //nolint:errcheck

	deleteCmd := &cobra.Command{
		Use:   "delete-folder FOLDER_ID",
		Short: "Delete a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("folder", args[0])
			if err != nil {
				return err
			}
			cli := getCliContext(cmd)
			if err := cli.Client.Delete(cmd.Context(), fmt.Sprintf("%s/folder/%d/", apiBase, id)); err != nil {
				return err
			}
			fmt.Printf("Folder %d deleted\n", id)
			return nil
		},
	}

	cmds := []*cobra.Command{listCmd, createCmd, deleteCmd}

	if withUpdate {
		var (
			updateName     string
			updateParentID int
		)
		updateCmd := &cobra.Command{
			Use:   "update-folder FOLDER_ID",
			Short: "Rename or move a folder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("folder", args[0])
				if err != nil {
					return err
				}
				data := map[string]any{}
				if updateName != "" {
					data["name"] = updateName
				}
				if cmd.Flags().Changed("parent-folder-id") {
					if updateParentID > 0 {
						data["parent_folder_id"] = updateParentID
					} else {
						data["parent_folder_id"] = nil
					}
				}
				if len(data) == 0 {
					return fmt.Errorf("no changes specified")
				}
				cli := getCliContext(cmd)
				result, err := cli.Client.Patch(cmd.Context(), fmt.Sprintf("%s/folder/%d/", apiBase, id), data)
				if err != nil {
					return err
				}
				return printJSON(result)
			},
		}
		updateCmd.Flags().StringVar(&updateName, "name", "", "New folder name")
		updateCmd.Flags().IntVar(&updateParentID, "parent-folder-id", 0, "New parent folder ID (0 to move to the root)")
		cmds = append(cmds, updateCmd)
	}

	return cmds
}
