// Package layout derives the responsive layout mode from device traits.
package layout

// MinWidthMasterDetail is the width a tablet window must exceed before the
// two-pane master-detail layout activates.
const MinWidthMasterDetail = 700.0

// Resolve reports whether master-detail layout is enabled. Phones never use
// master-detail regardless of width; tablets enable it strictly above the
// threshold.
func Resolve(tabletCapable bool, width float64) bool {
	if !tabletCapable {
		return false
	}
	return width > MinWidthMasterDetail
}
