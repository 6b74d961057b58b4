package analytics

import "strings"

// Classification is the normalized order status used for revenue eligibility
// and status breakdowns.
type Classification int

const (
	// ClassActive covers Pending/Processing/Shipped and any unrecognized
	// status literal.
	ClassActive Classification = iota
	// ClassCompleted covers delivered orders.
	ClassCompleted
	// ClassReturned marks orders present in the returns collection or whose
	// own status says so.
	ClassReturned
	// ClassCancelled orders are excluded from revenue entirely.
	ClassCancelled
)

// String returns the display label for the classification.
func (c Classification) String() string {
	switch c {
	case ClassCompleted:
		return "Completed"
	case ClassReturned:
		return "Returned"
	case ClassCancelled:
		return "Cancelled"
	default:
		return "Active"
	}
}

// Classify applies the ordered status decision list to an order. hasReturn
// is membership of the order's ID in the returns collection, which overrides
// the order's own status literal. First matching rule wins:
//
//  1. literal "Cancelled"                      -> Cancelled
//  2. return record present or literal "Returned" -> Returned
//  3. literal "Completed"/"Delivered"/"Complete"  -> Completed
//  4. anything else                            -> Active
//
// Matching is case-insensitive.
func Classify(status string, hasReturn bool) Classification {
	if strings.EqualFold(status, "Cancelled") {
		return ClassCancelled
	}

	if hasReturn || strings.EqualFold(status, "Returned") {
		return ClassReturned
	}

	if strings.EqualFold(status, "Completed") ||
		strings.EqualFold(status, "Delivered") ||
		strings.EqualFold(status, "Complete") {
		return ClassCompleted
	}

	return ClassActive
}
