// Package college holds the static catalog of player colleges.
// This package is PURE and must NOT import any infrastructure packages.
package college

// College is a cosmetic identity grouping, assigned one-to-one to players
// at setup and never reassigned.
type College struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Catalog contains the nine playable colleges, indexed by ID.
var Catalog = []College{
	{0, "Goodricke"},
	{1, "Derwent"},
	{2, "Langwith"},
	{3, "Alcuin"},
	{4, "Constantine"},
	{5, "Halifax"},
	{6, "James"},
	{7, "Vanbrugh"},
	{8, "Wentworth"},
}

// Count is the number of colleges, and therefore the player cap.
func Count() int {
	return len(Catalog)
}

// Get returns the college for an ID.
func Get(id int) (College, bool) {
	if id < 0 || id >= len(Catalog) {
		return College{}, false
	}
	return Catalog[id], true
}
