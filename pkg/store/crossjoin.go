package store

import "strings"

// CrossJoinName derives the name of the store backing a many-to-many join
// between stores a and b. The result does not depend on argument order, and
// a leading "_"-separated prefix shared by both names appears once:
//
//	CrossJoinName("users", "groups")            == "groups_users"
//	CrossJoinName("order_notes", "order_items") == "order_items_notes"
func CrossJoinName(a, b string) string {
	if a == b {
		return a
	}
	if b < a {
		a, b = b, a
	}

	pa := strings.Split(a, "_")
	pb := strings.Split(b, "_")
	n := 0
	for n < len(pa)-1 && n < len(pb)-1 && pa[n] == pb[n] {
		n++
	}
	if n == 0 {
		return a + "_" + b
	}
	return a + "_" + strings.Join(pb[n:], "_")
}
