package nhc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// kmlGeometry is the subset of a forecast advisory KML the engine consumes:
// the first polygon's outer ring, and every line string concatenated in
// document order.
type kmlGeometry struct {
	ring  []domain.GeoPoint
	track []domain.GeoPoint
}

// parseKMZ unpacks a KMZ archive and parses the KML document inside. A KMZ
// is a zip holding a single .kml entry, conventionally doc.kml.
func parseKMZ(data []byte) (kmlGeometry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return kmlGeometry{}, fmt.Errorf("opening kmz archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return kmlGeometry{}, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		geom, err := parseKML(rc)
		rc.Close()
		if err != nil {
			return kmlGeometry{}, err
		}
		return geom, nil
	}
	return kmlGeometry{}, errors.New("kmz archive contains no kml document")
}

// parseKML walks the document with a streaming decoder rather than a full
// unmarshal; advisory KML nests Placemark/MultiGeometry structures we have
// no schema for, and only the coordinate blocks matter.
func parseKML(r io.Reader) (kmlGeometry, error) {
	dec := xml.NewDecoder(r)

	var geom kmlGeometry
	var inPolygon, inOuter, inLineString, ringDone bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kmlGeometry{}, fmt.Errorf("parsing kml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Polygon":
				inPolygon = true
			case "outerBoundaryIs":
				inOuter = inPolygon
			case "LineString":
				inLineString = true
			case "coordinates":
				var raw string
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return kmlGeometry{}, fmt.Errorf("parsing kml coordinates: %w", err)
				}
				points, err := parseCoordinates(raw)
				if err != nil {
					return kmlGeometry{}, err
				}
				switch {
				case inLineString:
					geom.track = append(geom.track, points...)
				case inOuter && !ringDone:
					geom.ring = points
					ringDone = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "Polygon":
				inPolygon = false
				inOuter = false
			case "outerBoundaryIs":
				inOuter = false
			case "LineString":
				inLineString = false
			}
		}
	}
	return geom, nil
}

// parseCoordinates decodes a KML coordinate block: whitespace-separated
// "lon,lat[,alt]" tuples. Altitude is discarded.
func parseCoordinates(raw string) ([]domain.GeoPoint, error) {
	fields := strings.Fields(raw)
	points := make([]domain.GeoPoint, 0, len(fields))

	for _, field := range fields {
		parts := strings.Split(field, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate tuple %q", field)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude in %q: %w", field, err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude in %q: %w", field, err)
		}
		points = append(points, domain.GeoPoint{Lat: lat, Lon: lon})
	}
	return points, nil
}

// closeRing appends the first vertex when the source leaves the ring open.
func closeRing(ring []domain.GeoPoint) []domain.GeoPoint {
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		return append(ring, ring[0])
	}
	return ring
}
