package main

import (
	"fmt"
	"strings"

	"github.com/pkg/profile"
)

// startProfile starts a pprof profile written into dir. The returned stop
// function is safe to call more than once.
func startProfile(mode, dir string) (func(), error) {
	var opt func(*profile.Profile)
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
		return func() {}, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
	p := profile.Start(opt, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		p.Stop()
	}, nil
}
