// Package dataset loads the food-facts corpus and turns each record into a document.
package dataset

import "fmt"

// DocumentID returns the ID for the record at position i in load order.
// IDs are zero-padded so that lexical order matches load order.
func DocumentID(i int) string {
	return fmt.Sprintf("%09d", i)
}
