package graph

// LineFamilies maps a line name to the family it belongs to. Lines of the same
// family are interchangeable for transfer counting, e.g. the Green Line
// branches. Lines absent from the map form a family of their own.
type LineFamilies map[string]string

// Family returns the family name of line.
func (f LineFamilies) Family(line string) string {
	if fam, ok := f[line]; ok && fam != "" {
		return fam
	}
	return line
}

// Same reports whether two lines count as one for transfers. The empty line
// never matches.
func (f LineFamilies) Same(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return f.Family(a) == f.Family(b)
}
