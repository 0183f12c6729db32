package catalog

import (
	"slices"
	"testing"

	"github.com/loftloot/loftloot/internal/testutil"
	"github.com/loftloot/loftloot/pkg/models"
)

func TestYearTokens(t *testing.T) {
	year := 1991
	want := []string{"1989", "1990", "1991", "1992", "1993", "1990s", "90s", "90", "199"}
	if got := YearTokens(&year); !slices.Equal(got, want) {
		t.Errorf("YearTokens(1991) = %v, want %v", got, want)
	}

	if got := YearTokens(nil); got != nil {
		t.Errorf("YearTokens(nil) = %v, want nil", got)
	}
	zero := 0
	if got := YearTokens(&zero); got != nil {
		t.Errorf("YearTokens(0) = %v, want nil", got)
	}
}

func TestTextIndex_Matches(t *testing.T) {
	products := []*models.Product{
		Normalize(testutil.NewRawProduct(1,
			testutil.WithName("Optimus Prime"),
			testutil.WithYear(1991),
		)),
		Normalize(testutil.NewRawProduct(2,
			testutil.WithName("Pokémon Pikachu"),
			testutil.WithoutYear(),
		)),
	}
	idx := NewTextIndex(products)

	tests := []struct {
		name  string
		id    int64
		query string
		want  bool
	}{
		{"empty query matches all", 1, "", true},
		{"name substring", 1, "prim", true},
		{"manufacturer substring", 1, "takara", true},
		{"collection substring", 1, "transformers", true},
		{"accent folded", 2, "pokemon", true},
		{"single digit via decade token", 1, "9", true},
		{"digit only inside a token", 1, "8", false},
		{"year prefix", 1, "199", true},
		{"short decade", 1, "90s", true},
		{"full decade", 1, "1990s", true},
		{"straddling year", 1, "1993", true},
		{"outside straddle", 1, "1994", false},
		{"no year no tokens", 2, "19", false},
		{"no match", 1, "skeletor", false},
		{"unknown id", 99, "prime", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.Matches(tt.id, tt.query); got != tt.want {
				t.Errorf("Matches(%d, %q) = %v, want %v", tt.id, tt.query, got, tt.want)
			}
		})
	}
}
