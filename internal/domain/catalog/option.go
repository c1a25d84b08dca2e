package catalog

import "strconv"

// FormatOption renders an id-bearing dropdown value such as "ID:12 - Roll".
// Bulk upload templates use these strings and the importer unwraps them again.
func FormatOption(id uint64, label string) string {
	return "ID:" + strconv.FormatUint(id, 10) + " - " + label
}
