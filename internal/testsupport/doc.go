// Package testsupport builds isolated configurations and stub worker
// binaries for package tests.
package testsupport
