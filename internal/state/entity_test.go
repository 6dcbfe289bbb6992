package state

import (
	"reflect"
	"testing"
)

func TestFiltered_ComposesStatusAndText(t *testing.T) {
	s := loadedStore(t,
		item{ID: "1", Name: "Ann", Status: "active"},
		item{ID: "2", Name: "Bob", Status: "deactive"},
		item{ID: "3", Name: "anna", Status: "active"},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter", Filter{}, []string{"1", "2", "3"}},
		{"all status", Filter{Status: "all"}, []string{"1", "2", "3"}},
		{"status only", Filter{Status: "active"}, []string{"1", "3"}},
		{"status case-insensitive", Filter{Status: "ACTIVE"}, []string{"1", "3"}},
		{"text only", Filter{Text: "ANN"}, []string{"1", "3"}},
		{"status and text", Filter{Status: "active", Text: "an"}, []string{"1", "3"}},
		{"no match", Filter{Status: "new"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, e := range s.Filtered(tt.filter) {
				got = append(got, e.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Filtered(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}

	if len(s.Entities()) != 3 {
		t.Fatalf("filtering modified the store")
	}
}

func TestFilter_Active(t *testing.T) {
	if (Filter{}).Active() || (Filter{Status: "all"}).Active() {
		t.Fatalf("empty filter reported active")
	}
	if !(Filter{Text: "x"}).Active() || !(Filter{Status: "new"}).Active() {
		t.Fatalf("narrowing filter reported inactive")
	}
}
