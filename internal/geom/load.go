package geom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists the file types Load understands.
var Extensions = []string{".geojson", ".json", ".csv", ".kml", ".wkt"}

// Supported reports whether Load accepts path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load picks a loader by file extension.
func Load(path string) (Data, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, err
		}
		return ParseWKT(string(b))
	default:
		return Data{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
