package main

import (
	"fmt"
	"strings"

	docrepos "github.com/mzalendo/kazi/storage/repos"
)

// printIndexes lists the composite indexes the compound queries rely on, so
// they can be declared in the hosted store's console. Until they exist there,
// those queries fall back to in-memory sorting.
func (cli *commandLine) printIndexes() {
	fmt.Println("Composite indexes required:")
	for _, idx := range docrepos.CompositeIndexes() {
		fmt.Printf("  %s: %s ASC, %s DESC\n",
			idx.Collection, strings.Join(idx.Filters, " ASC, "), idx.Order)
	}
}
