package geom

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlPlacemark struct {
	Point      *kmlCoords  `xml:"Point"`
	LineString *kmlCoords  `xml:"LineString"`
	Polygon    *kmlPolygon `xml:"Polygon"`
}

// LoadKML extracts Point, LineString and Polygon placemarks from a KML file.
// KML coordinates are "lon,lat[,alt]"; we ignore altitude.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return ReadKML(f)
}

func ReadKML(r io.Reader) (Data, error) {
	var d Data
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Data{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, err
		}
		switch {
		case pm.Point != nil:
			for _, p := range parseKMLCoords(pm.Point.Coordinates) {
				d.Add(p)
			}
		case pm.LineString != nil:
			if ls := parseKMLCoords(pm.LineString.Coordinates); len(ls) > 1 {
				d.Add(orb.LineString(ls))
			}
		case pm.Polygon != nil:
			poly := orb.Polygon{orb.Ring(parseKMLCoords(pm.Polygon.Outer.Coordinates))}
			for _, in := range pm.Polygon.Inner {
				poly = append(poly, orb.Ring(parseKMLCoords(in.Coordinates)))
			}
			if len(poly[0]) > 2 {
				d.Add(poly)
			}
		}
	}
	if d.Empty() {
		return Data{}, errors.New("kml: no placemarks found")
	}
	return d, nil
}

// coordinates may contain multiple tuples separated by spaces
func parseKMLCoords(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}
