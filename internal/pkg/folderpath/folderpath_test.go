package folderpath

import (
	"reflect"
	"testing"
)

func intp(v int) *int { return &v }

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		folders []Folder
		want    map[int]string
	}{
		{
			name: "root folders",
			folders: []Folder{
				{ID: 1, Name: "default"},
				{ID: 2, Name: "shared"},
			},
			want: map[int]string{1: "/default", 2: "/shared"},
		},
		{
			name: "nested folders",
			folders: []Folder{
				{ID: 1, Name: "default"},
				{ID: 2, Name: "SNMP_Rules_v1.2", ParentID: intp(1)},
				{ID: 3, Name: "drafts", ParentID: intp(2)},
			},
			want: map[int]string{
				1: "/default",
				2: "/default/SNMP_Rules_v1.2",
				3: "/default/SNMP_Rules_v1.2/drafts",
			},
		},
		{
			name: "child listed before parent",
			folders: []Folder{
				{ID: 2, Name: "inner", ParentID: intp(1)},
				{ID: 1, Name: "outer"},
			},
			want: map[int]string{1: "/outer", 2: "/outer/inner"},
		},
		{
			name: "missing parent",
			folders: []Folder{
				{ID: 5, Name: "orphan", ParentID: intp(99)},
			},
			want: map[int]string{5: "/orphan"},
		},
		{
			name: "cycle does not recurse forever",
			folders: []Folder{
				{ID: 1, Name: "a", ParentID: intp(2)},
				{ID: 2, Name: "b", ParentID: intp(1)},
			},
			want: map[int]string{1: "/b/a", 2: "/b"},
		},
		{
			name:    "empty input",
			folders: nil,
			want:    map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.folders)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %v, want %v", got, tt.want)
			}
		})
	}
}
