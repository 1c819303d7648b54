package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT parses POINT, MULTIPOINT, LINESTRING, MULTILINESTRING, POLYGON,
// MULTIPOLYGON and GEOMETRYCOLLECTION text.
func ParseWKT(s string) (Data, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	g, err := unmarshalWKT(s)
	if err != nil {
		return Data{}, fmt.Errorf("wkt: %w", err)
	}
	var d Data
	d.Add(g)
	if d.Empty() {
		return Data{}, ErrNoGeometry
	}
	return d, nil
}

const collectionTag = "GEOMETRYCOLLECTION"

var errMalformedCollection = errors.New("malformed geometry collection")

// unmarshalWKT splits collections into their members itself; orb's decoder
// mis-splits members that contain commas.
func unmarshalWKT(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(collectionTag) || !strings.EqualFold(s[:len(collectionTag)], collectionTag) {
		return wkt.Unmarshal(s)
	}
	body := strings.TrimSpace(s[len(collectionTag):])
	if strings.EqualFold(body, "EMPTY") {
		return orb.Collection{}, nil
	}
	if len(body) < 2 || body[0] != '(' || body[len(body)-1] != ')' {
		return nil, errMalformedCollection
	}
	members, err := splitTopLevel(body[1 : len(body)-1])
	if err != nil {
		return nil, err
	}
	c := make(orb.Collection, 0, len(members))
	for i, m := range members {
		g, err := unmarshalWKT(m)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		c = append(c, g)
	}
	return c, nil
}

// splitTopLevel splits s on commas outside parentheses.
func splitTopLevel(s string) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errMalformedCollection
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errMalformedCollection
	}
	return append(out, s[start:]), nil
}

// WKT renders g as well-known text.
func WKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}
