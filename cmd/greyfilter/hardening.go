package main

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

type pledge struct {
	promises []string
	socket   string
}

func (p *pledge) has(promise string) bool {
	for _, have := range p.promises {
		if have == promise {
			return true
		}
	}
	return false
}

func (p *pledge) add(promises ...string) {
	for _, promise := range promises {
		if !p.has(promise) {
			p.promises = append(p.promises, promise)
		}
	}
}

func (p *pledge) String() string {
	return strings.Join(p.promises, " ")
}

// promises lists what the process still needs once flags are parsed.
func promises(ropts *redis.Options, o *options) *pledge {
	p := &pledge{}
	p.add("stdio")

	switch ropts.Network {
	case "unix":
		p.add("unix")
		p.socket = ropts.Addr
	default:
		p.add("inet", "dns")
	}

	if len(o.metrics) > 0 {
		p.add("inet")
	}

	for _, name := range strings.Split(o.storage, ",") {
		switch strings.TrimSpace(name) {
		case "mysql", "slack":
			p.add("inet", "dns", "rpath")
		case "sqlite", "file":
			p.add("rpath", "wpath", "cpath", "flock")
		}
	}

	// Unveiling the socket alone would hide every other path.
	if p.has("rpath") {
		p.socket = ""
	}

	return p
}
