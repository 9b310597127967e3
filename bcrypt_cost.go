//go:build !race

package security

func passwordHashCost() int {
	return 12
}
