package styles

// DefaultTheme is the palette used before any variables are applied.
var DefaultTheme = Theme{
	Name: "default",
	Tokens: ThemeTokens{
		Background:    "#09090B",
		Panel:         "#09090B",
		Text:          "#FAFAFA",
		TextMuted:     "#A1A1AA",
		Border:        "#27272A",
		Primary:       "#3B82F6",
		Secondary:     "#94A3B8",
		Accent:        "#7C3AED",
		Focus:         "#3B82F6",
		Error:         "#EF4444",
		Sidebar:       "#18181B",
		SidebarActive: "#3B82F6",
	},
	Radius:    0.5,
	FontScale: 1,
}
