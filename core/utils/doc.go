// Package utils provides common utility functions for the heritage application.
// It includes helper functions for type conversion and year parsing that
// don't fit into domain-specific packages.
package utils
