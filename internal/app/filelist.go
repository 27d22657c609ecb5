package app

import (
	"cmp"
	"slices"
	"strings"

	"github.com/wilbur182/tailview/internal/repository"
)

type sortColumn int

const (
	sortByName sortColumn = iota
	sortByLines
	sortByAge
)

func (c sortColumn) String() string {
	switch c {
	case sortByLines:
		return "lines"
	case sortByAge:
		return "age"
	default:
		return "name"
	}
}

// fileOrder is the sort applied to the file list.
type fileOrder struct {
	column     sortColumn
	descending bool
}

// sortFiles sorts files in place. Ascending age puts the most recently
// updated file first. Ties fall back to the name.
func sortFiles(files []repository.FileInfo, order fileOrder) {
	slices.SortStableFunc(files, func(a, b repository.FileInfo) int {
		var c int
		switch order.column {
		case sortByLines:
			c = cmp.Compare(a.Lines, b.Lines)
		case sortByAge:
			c = b.LastUpdate.Compare(a.LastUpdate)
		}
		if c == 0 {
			c = strings.Compare(a.Name, b.Name)
		}
		if order.descending {
			return -c
		}
		return c
	})
}

// sortKey maps a sort binding press to the order it selects. Uppercase
// letters sort descending.
func sortKey(s string) (fileOrder, bool) {
	switch s {
	case "n":
		return fileOrder{sortByName, false}, true
	case "N":
		return fileOrder{sortByName, true}, true
	case "l":
		return fileOrder{sortByLines, false}, true
	case "L":
		return fileOrder{sortByLines, true}, true
	case "a":
		return fileOrder{sortByAge, false}, true
	case "A":
		return fileOrder{sortByAge, true}, true
	}
	return fileOrder{}, false
}
