package bytelayout

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the major.minor.patch version a layout script declares.
type Version struct {
	Major int
	Minor int
	Patch int
}

// CurrentVersion is the script version implemented by this module. Scripts
// without a version attribute are treated as written for it.
var CurrentVersion = Version{Major: 1, Minor: 0, Patch: 0}

// ParseVersion parses a three-component dotted version.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: '%s'", ErrMalformattedVersion, s)
	}

	var nums [3]int

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || strings.HasPrefix(part, "+") {
			return Version{}, fmt.Errorf("%w: '%s'", ErrMalformattedVersion, s)
		}

		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// CheckSupported reports whether scripts of version v can be interpreted.
func (v Version) CheckSupported() error {
	if v.Major > CurrentVersion.Major {
		return fmt.Errorf("%w: %s (supported up to %d.x)", ErrUnsupportedVersion, v, CurrentVersion.Major)
	}

	return nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
