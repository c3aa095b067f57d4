package event

import (
	"fmt"
	"strings"
)

// Named dynamics, as intensities.
const (
	PPP = 0.125
	PP  = 0.25
	P   = 0.375
	MP  = 0.5
	MF  = 0.625
	F   = 0.75
	FF  = 0.875
	FFF = 1.0
)

var dynamics = map[string]float64{
	"ppp": PPP,
	"pp":  PP,
	"p":   P,
	"mp":  MP,
	"mf":  MF,
	"f":   F,
	"ff":  FF,
	"fff": FFF,
}

// ParseDynamic maps a dynamic marking such as "mf" to its intensity.
func ParseDynamic(s string) (float64, error) {
	v, ok := dynamics[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown dynamic %q", s)
	}
	return v, nil
}
