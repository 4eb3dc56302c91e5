// Package catalog declares types in a package of their own, for builder
// tests that reference types across packages.
package catalog

// Author shares its name with the Author of package schema's tests.
type Author struct {
	Name string
}
