package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacentio/canopy/tree"
)

var numericKey = regexp.MustCompile(`^[0-9]+$`)

// keyIndex reports whether key is a 32-bit unsigned integer key and its value.
func keyIndex(key string) (uint32, bool) {
	if !numericKey.MatchString(key) {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// CompareKeys orders keys the way key-ordered queries do: keys holding a
// 32-bit unsigned integer come first in numeric order, all other keys follow
// in lexicographic order.
func CompareKeys(a, b string) int {
	ia, numA := keyIndex(a)
	ib, numB := keyIndex(b)

	switch {
	case numA && numB:
		if ia != ib {
			if ia < ib {
				return -1
			}
			return 1
		}
		// "7" and "007" hold the same index
		return strings.Compare(a, b)
	case numA:
		return -1
	case numB:
		return 1
	}
	return strings.Compare(a, b)
}

// Rank of each value class in the cross-type ordering.
const (
	rankNull = iota
	rankFalse
	rankTrue
	rankNumber
	rankString
	rankObject
)

func rank(v tree.Node) int {
	switch x := v.(type) {
	case nil:
		return rankNull
	case bool:
		if x {
			return rankTrue
		}
		return rankFalse
	case float64:
		return rankNumber
	case string:
		return rankString
	}
	return rankObject
}

// CompareValues orders two normalized nodes across types:
//
//	null < false < true < numbers < strings < objects
//
// Numbers and strings compare natively within their class. Two objects
// always tie.
func CompareValues(a, b tree.Node) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case rankNumber:
		x, y := a.(float64), b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}

// compareKeyBound compares a filter bound with a key under key ordering.
// Strings and numbers are compared by their key form; null and booleans
// sort before every key.
func compareKeyBound(bound tree.Node, key string) int {
	switch b := bound.(type) {
	case string:
		return CompareKeys(b, key)
	case float64:
		return CompareKeys(strconv.FormatFloat(b, 'f', -1, 64), key)
	}
	return -1
}
