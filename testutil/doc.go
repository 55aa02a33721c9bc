// Package testutil provides fill images, layouts and seeded randomness for tests.
package testutil
