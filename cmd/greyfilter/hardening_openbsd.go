//go:build openbsd

package main

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func hardening(p *pledge) {
	if p.socket != "" {
		if err := unix.Unveil(p.socket, "rw"); err != nil {
			log.WithError(err).Fatal("Couldn't unveil decision store socket")
		}
	}

	if err := unix.PledgePromises(p.String()); err != nil {
		log.WithError(err).Fatal("Couldn't pledge")
	}
}
