package geom

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a GeoJSON file and returns Data (points, lines, polygons)
// plus the feature properties as an attribute table.
func LoadGeoJSON(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	d, err := ParseGeoJSON(b)
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
func ParseGeoJSON(b []byte) (Data, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return Data{}, err
	}
	var features []*geojson.Feature
	switch head.Type {
	case "":
		return Data{}, fmt.Errorf("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return Data{}, err
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return Data{}, err
		}
		features = []*geojson.Feature{f}
	default:
		g, err := geojson.UnmarshalGeometry(b)
		if err != nil {
			return Data{}, err
		}
		var d Data
		d.Add(g.Geometry())
		if d.Empty() {
			return Data{}, ErrNoGeometry
		}
		return d, nil
	}

	var d Data
	for _, f := range features {
		if f.Geometry != nil {
			d.Add(f.Geometry)
		}
	}
	if d.Empty() {
		return Data{}, ErrNoGeometry
	}
	d.Attrs = propertyTable(features)
	return d, nil
}

// propertyTable unions the property keys of all features in first-seen order.
func propertyTable(features []*geojson.Feature) Table {
	var t Table
	seen := map[string]bool{}
	for _, f := range features {
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			t.Columns = append(t.Columns, k)
		}
	}
	for _, f := range features {
		row := make([]string, len(t.Columns))
		for i, k := range t.Columns {
			row[i] = formatValue(f.Properties[k])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}

// WriteGeoJSON writes fc to path, indented.
func WriteGeoJSON(path string, fc *geojson.FeatureCollection) error {
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
