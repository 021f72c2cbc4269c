package comparison

// palette is the fixed series color cycle.  Colors are assigned by subject
// position so the same subject list always renders with the same colors;
// lists longer than the palette wrap around.
var palette = []string{
	"#6366f1",
	"#f59e0b",
	"#10b981",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#ec4899",
	"#84cc16",
}

// ColorAt returns the palette color for a subject at the given position.
func ColorAt(index int) string {
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

// PaletteSize returns the number of distinct colors before wrapping.
func PaletteSize() int {
	return len(palette)
}
