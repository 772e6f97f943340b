package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned for stop times that are not HH:MM:SS.
var ErrInvalidTime = errors.New("invalid GTFS time")

var wantedFiles = map[string]bool{
	"agency.txt":     true,
	"routes.txt":     true,
	"trips.txt":      true,
	"stops.txt":      true,
	"stop_times.txt": true,
}

// NewIndexFromFile opens a local GTFS zip file and builds an index.
func NewIndexFromFile(path string) (*Index, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GTFS zip %s: %w", path, err)
	}
	defer zr.Close()
	return newIndexFromZip(&zr.Reader)
}

// NewIndexFromBytes builds an index from an in-memory GTFS zip.
func NewIndexFromBytes(data []byte) (*Index, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read GTFS zip: %w", err)
	}
	return newIndexFromZip(zr)
}

func newIndexFromZip(zr *zip.Reader) (*Index, error) {
	g := NewIndex()
	for _, f := range zr.File {
		if !wantedFiles[strings.ToLower(f.Name)] {
			continue
		}
		if err := g.consumeCSV(f); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	g.finalize()
	return g, nil
}

// ParseTime converts a GTFS HH:MM:SS value to seconds after the start of the
// service day. Hours may exceed 23.
func ParseTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return v[0]*3600 + v[1]*60 + v[2], nil
}

func (g *Index) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return g.consumeTable(strings.ToLower(f.Name), r)
}

func (g *Index) consumeTable(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	switch name {
	case "routes.txt":
		rID, rSN, rLN, rType := idx("route_id"), idx("route_short_name"), idx("route_long_name"), idx("route_type")
		for _, row := range rec[1:] {
			id := field(row, rID)
			if id == "" {
				continue
			}
			typ, _ := strconv.Atoi(field(row, rType))
			g.Routes[id] = Route{ID: id, ShortName: field(row, rSN), LongName: field(row, rLN), Type: typ}
		}
	case "trips.txt":
		rID, tID, sID, hs, dir := idx("route_id"), idx("trip_id"), idx("service_id"), idx("trip_headsign"), idx("direction_id")
		for _, row := range rec[1:] {
			id := field(row, tID)
			if id == "" {
				continue
			}
			d, _ := strconv.Atoi(field(row, dir))
			g.Trips[id] = Trip{ID: id, RouteID: field(row, rID), ServiceID: field(row, sID), DirectionID: d, Headsign: field(row, hs)}
		}
	case "stops.txt":
		sID, sN, sLat, sLon, parent := idx("stop_id"), idx("stop_name"), idx("stop_lat"), idx("stop_lon"), idx("parent_station")
		for _, row := range rec[1:] {
			id := field(row, sID)
			if id == "" {
				continue
			}
			lat, _ := strconv.ParseFloat(field(row, sLat), 64)
			lon, _ := strconv.ParseFloat(field(row, sLon), 64)
			g.Stops[id] = Stop{ID: id, Name: field(row, sN), Latitude: lat, Longitude: lon, ParentStation: field(row, parent)}
		}
	case "stop_times.txt":
		tID, sID, sq := idx("trip_id"), idx("stop_id"), idx("stop_sequence")
		arrTime, depTime := idx("arrival_time"), idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			seq, _ := strconv.Atoi(field(row, sq))
			arr, arrErr := ParseTime(field(row, arrTime))
			dep, depErr := ParseTime(field(row, depTime))
			// Untimed intermediate stops are skipped rather than interpolated.
			switch {
			case arrErr != nil && depErr != nil:
				continue
			case arrErr != nil:
				arr = dep
			case depErr != nil:
				dep = arr
			}
			trip := field(row, tID)
			g.StopTimes[trip] = append(g.StopTimes[trip], StopTime{
				StopID:    field(row, sID),
				Sequence:  seq,
				Arrival:   arr,
				Departure: dep,
			})
		}
	case "agency.txt":
		agID, agTZ, agName := idx("agency_id"), idx("agency_timezone"), idx("agency_name")
		if len(rec) > 1 {
			if g.AgencyID == "" {
				g.AgencyID = field(rec[1], agID)
			}
			g.AgencyTimezone = field(rec[1], agTZ)
			g.AgencyName = field(rec[1], agName)
		}
	}
	return nil
}
