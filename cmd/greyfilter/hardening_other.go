//go:build !openbsd

package main

func hardening(*pledge) {
}
