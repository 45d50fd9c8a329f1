package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidName = errors.New("invalid element name")

// Name identifies an element or attribute by namespace and local name.
// Two names are equal if both namespace and local name are equal, the prefix
// used in a document is irrelevant.
type Name struct {
	Space string
	Local string
}

// ParseName parses a name in clark notation. Both "{namespace}local" and
// "{}local" are accepted, as well as a bare "local" without any namespace.
func ParseName(clark string) (Name, error) {
	if !strings.HasPrefix(clark, "{") {
		if clark == "" || strings.ContainsAny(clark, "{}") {
			return Name{}, fmt.Errorf("parse %q: %w", clark, ErrInvalidName)
		}

		return Name{Local: clark}, nil
	}

	end := strings.IndexByte(clark, '}')
	if end == -1 || end == len(clark)-1 {
		return Name{}, fmt.Errorf("parse %q: %w", clark, ErrInvalidName)
	}

	return Name{Space: clark[1:end], Local: clark[end+1:]}, nil
}

// MustParseName is like ParseName but panics if the name can not be parsed.
func MustParseName(clark string) Name {
	name, err := ParseName(clark)
	if err != nil {
		panic(err)
	}

	return name
}

// String returns the name in clark notation, "{namespace}local".
func (n Name) String() string {
	return "{" + n.Space + "}" + n.Local
}

// key returns the bare local name if the names namespace equals the optional
// namespace filter, and the clark notation otherwise.
func (n Name) key(namespace []string) string {
	if len(namespace) > 0 && namespace[0] == n.Space {
		return n.Local
	}

	return n.String()
}

func nameOfXML(name xml.Name) Name {
	return Name{Space: name.Space, Local: name.Local}
}
