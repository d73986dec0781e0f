package leads

import (
	"reflect"
	"testing"
)

var testPool = []Lead{
	{Name: "John Smith", Phone: "555-0001", Email: "john.smith@example.com"},
	{Name: "Jane Doe", Phone: "555-0002", Email: "jane.doe@example.com"},
	{Name: "Bob Johnson", Phone: "555-0003", Email: "bob.johnson@example.com"},
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []Lead
	}{
		{
			name:  "Exact name fragment",
			query: "jane",
			want:  []Lead{testPool[1]},
		},
		{
			name:  "Surname",
			query: "smith",
			want:  []Lead{testPool[0]},
		},
		{
			name:  "No match",
			query: "zzz",
			want:  []Lead{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(testPool, tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatPool(t *testing.T) {
	got := FormatPool(testPool[:2])
	want := "**1. John Smith**\nPhone: 555-0001\nEmail: john.smith@example.com\n" +
		"\n" +
		"**2. Jane Doe**\nPhone: 555-0002\nEmail: jane.doe@example.com\n"
	if got != want {
		t.Errorf("FormatPool() = %q, want %q", got, want)
	}
}

func TestFormatPool_Empty(t *testing.T) {
	if got := FormatPool(nil); got != "" {
		t.Errorf("FormatPool(nil) = %q, want empty", got)
	}
}
