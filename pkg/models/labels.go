package models

// PlatformLogo maps a purchase platform to its logo URL.
var PlatformLogo = map[string]string{
	"eBay": "https://raw.githubusercontent.com/LoftLoot/site/refs/heads/main/images/logo_ebay.png",
	"Etsy": "https://raw.githubusercontent.com/LoftLoot/site/refs/heads/main/images/logo_etsy.png",
}

// Logo returns the logo URL for a platform, or "" when the platform is unknown.
func Logo(platform string) string {
	return PlatformLogo[platform]
}

// TypeLabel holds display names for a product type.
type TypeLabel struct {
	Shorthand string
	Plural    string
}

// TypeLabels lists the display names for well-known product types.
var TypeLabels = map[string]TypeLabel{
	"Action Figure": {Shorthand: "Figures", Plural: "Action Figures"},
	"Playset":       {Shorthand: "Playsets", Plural: "Playsets"},
	"Vehicle":       {Shorthand: "Vehicles", Plural: "Vehicles"},
	"Plush":         {Shorthand: "Plush", Plural: "Plush Toys"},
	"Art Toy":       {Shorthand: "Art Toys", Plural: "Art Toys"},
	"Home Decor":    {Shorthand: "Decor", Plural: "Home Decor"},
	"Electronics":   {Shorthand: "Electronics", Plural: "Electronics"},
}

// PluralType returns the plural display label for a product type.
// Unknown types are returned unchanged.
func PluralType(t string) string {
	if l, ok := TypeLabels[t]; ok {
		return l.Plural
	}
	return t
}
