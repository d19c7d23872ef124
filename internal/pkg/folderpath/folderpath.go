// Package folderpath builds human-readable paths for the folder trees GIMS
// returns as flat id/parent lists.
package folderpath

// Folder is the subset of a GIMS folder object needed to build paths.
type Folder struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parent_folder_id"`
}

// Build maps folder IDs to full paths. Root folders become "/<name>", nested
// folders get the parent chain prepended ("/default/SNMP_Rules_v1.2").
// Folders whose parent chain is broken or cyclic resolve to an empty parent
// path rather than recursing forever.
func Build(folders []Folder) map[int]string {
	byID := make(map[int]Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	paths := make(map[int]string, len(folders))
	var resolve func(id int, seen map[int]bool) string
	resolve = func(id int, seen map[int]bool) string {
		if p, ok := paths[id]; ok {
			return p
		}
		f, ok := byID[id]
		if !ok || seen[id] {
			return ""
		}
		seen[id] = true
		if f.ParentID != nil {
			paths[id] = resolve(*f.ParentID, seen) + "/" + f.Name
		} else {
			paths[id] = "/" + f.Name
		}
		return paths[id]
	}

	for _, f := range folders {
		resolve(f.ID, map[int]bool{})
	}
	return paths
}
