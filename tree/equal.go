package tree

import "reflect"

// Equal reports whether a and b are deeply equal normalized nodes. Two maps
// are equal when they hold the same keys with equal children. Maps shared
// between a and b are not descended into, so comparing two roots that
// differ in one branch only walks that branch.
func Equal(a, b Node) bool {
	am, aIsMap := a.(Map)
	bm, bIsMap := b.(Map)
	if !aIsMap || !bIsMap {
		return !aIsMap && !bIsMap && a == b
	}
	if len(am) != len(bm) {
		return false
	}
	if sameMap(am, bm) {
		return true
	}
	for k, av := range am {
		bv, ok := bm[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

func sameMap(a, b Map) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
