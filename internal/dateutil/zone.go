package dateutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnnamedZone is returned when the host time zone cannot be given an
// IANA name.
var ErrUnnamedZone = errors.New("local time zone has no IANA name")

// LocalZone returns the host time zone loaded under its IANA name, taken
// from $TZ or the target of the /etc/localtime link. time.Local is always
// named "Local", which means nothing to another machine.
func LocalZone() (*time.Location, error) {
	return localZone(os.LookupEnv, "/etc/localtime")
}

func localZone(lookupEnv func(string) (string, bool), link string) (*time.Location, error) {
	if tz, ok := lookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		switch {
		case tz == "":
			return time.UTC, nil
		case filepath.IsAbs(tz):
			link = tz
		default:
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return nil, fmt.Errorf("TZ=%q: %w", tz, err)
			}
			return loc, nil
		}
	}

	paths := []string{link}
	if target, err := os.Readlink(link); err == nil {
		paths = []string{target, link}
	}
	for _, p := range paths {
		_, name, ok := strings.Cut(p, "zoneinfo/")
		if !ok {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnnamedZone, err)
		}
		return loc, nil
	}
	return nil, ErrUnnamedZone
}
