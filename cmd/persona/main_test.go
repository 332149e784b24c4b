package main

import (
	"reflect"
	"testing"
)

func TestRewriteProfileLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "no args", in: []string{"persona"}, want: []string{"persona"}},
		{
			name: "profile id first token",
			in:   []string{"persona", "profile-3"},
			want: []string{"persona", "profiles", "show", "profile-3"},
		},
		{
			name: "after value flag",
			in:   []string{"persona", "--dir", "./board", "profile-3"},
			want: []string{"persona", "--dir", "./board", "profiles", "show", "profile-3"},
		},
		{
			name: "after equals flag",
			in:   []string{"persona", "--widget=team", "profile-3"},
			want: []string{"persona", "--widget=team", "profiles", "show", "profile-3"},
		},
		{
			name: "after bool flag",
			in:   []string{"persona", "--pretty", "profile-3"},
			want: []string{"persona", "--pretty", "profiles", "show", "profile-3"},
		},
		{
			name: "after double dash",
			in:   []string{"persona", "--", "profile-3"},
			want: []string{"persona", "--", "profiles", "show", "profile-3"},
		},
		{
			name: "bare prefix is not an id",
			in:   []string{"persona", "profile-"},
			want: []string{"persona", "profile-"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"persona", "profiles", "show", "profile-3"},
			want: []string{"persona", "profiles", "show", "profile-3"},
		},
		{
			name: "unknown command untouched",
			in:   []string{"persona", "wat"},
			want: []string{"persona", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteProfileLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
