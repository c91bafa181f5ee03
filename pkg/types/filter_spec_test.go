package types

import "testing"

func TestSanitizeDefaults(t *testing.T) {
	spec := FilterSpec{}
	spec.Sanitize()
	if !spec.Equal(NewFilterSpec()) {
		t.Errorf("Expected zero spec to sanitize to defaults, got %+v", spec)
	}
}

func TestEqual(t *testing.T) {
	a := FilterSpec{Ram: []string{"8GB"}, PriceMin: IntPtr(10), Sort: SortName, Order: OrderAsc, Page: 1, PageSize: 20}
	b := a.Clone()
	if !a.Equal(b) {
		t.Error("Expected clone to be equal")
	}
	b.PriceMin = IntPtr(11)
	if a.Equal(b) {
		t.Error("Expected different min price to differ")
	}
	b = a.Clone()
	b.Ram = append(b.Ram, "12GB")
	if a.Equal(b) {
		t.Error("Expected different ram selection to differ")
	}
	if len(a.Ram) != 1 {
		t.Error("Expected clone to not share slices")
	}
	c := NewFilterSpec()
	d := NewFilterSpec()
	d.Os = []string{}
	if !c.Equal(d) {
		t.Error("Expected nil and empty sets to be equal")
	}
}

func TestEqualIgnoringPage(t *testing.T) {
	a := NewFilterSpec()
	b := NewFilterSpec()
	b.Page = 4
	if a.Equal(b) {
		t.Error("Expected page change to make specs differ")
	}
	if !a.EqualIgnoringPage(b) {
		t.Error("Expected specs to be equal when ignoring page")
	}
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max *int
		wantMin  *int
		wantMax  *int
	}{
		{"none", nil, nil, nil, nil},
		{"only min", IntPtr(5), nil, IntPtr(5), nil},
		{"only max", nil, IntPtr(9), nil, IntPtr(9)},
		{"equal", IntPtr(5), IntPtr(5), IntPtr(5), IntPtr(5)},
		{"inverted", IntPtr(30000), IntPtr(5000), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := FilterSpec{PriceMin: tt.min, PriceMax: tt.max}
			gotMin, gotMax := spec.PriceRange()
			if !equalInt(gotMin, tt.wantMin) || !equalInt(gotMax, tt.wantMax) {
				t.Errorf("Expected %v-%v, got %v-%v", tt.wantMin, tt.wantMax, gotMin, gotMax)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	spec := FilterSpec{Page: 3, PageSize: 20}
	if spec.Skip() != 40 {
		t.Errorf("Expected skip 40, got %d", spec.Skip())
	}
}

func TestContainsText(t *testing.T) {
	p := Product{Name: "Pineapple Case", Brand: "Generic"}
	if !p.ContainsText("apple") {
		t.Error("Expected substring match in name")
	}
	if p.ContainsText("orange") {
		t.Error("Expected no match")
	}
}
