// Package profileio reads the per-profile LiDAR text files produced by the
// profile extraction step
package profileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chrissnell/automorph/internal/profile"
)

// NoData marks a missing elevation in the Z column
const NoData = "NoData"

// DefaultExt is the extension of profile files
const DefaultExt = ".txt"

var (
	// ErrMalformedRow is returned for a data row that cannot be parsed
	ErrMalformedRow = errors.New("malformed profile row")

	// ErrBadName is returned for a file name not of the form
	// "<Location> <Year> <N>.txt"
	ErrBadName = errors.New("profile file name must be \"<Location> <Year> <N>\"")
)

// Read parses a profile file: one header line, then rows of easting,
// northing, elevation, latitude, and longitude separated by tabs or spaces.
// Blank lines are skipped.
func Read(r io.Reader) (profile.RawProfile, error) {
	var raw profile.RawProfile

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return raw, fmt.Errorf("line %d: %w: expected 5 columns, got %d", line, ErrMalformedRow, len(fields))
		}

		var vals [5]float64
		for c := 0; c < 5; c++ {
			if c == 2 && strings.Contains(fields[c], NoData) {
				vals[c] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(fields[c], 64)
			if err != nil {
				return raw, fmt.Errorf("line %d column %d: %w: %v", line, c+1, ErrMalformedRow, err)
			}
			vals[c] = v
		}

		raw.Easting = append(raw.Easting, vals[0])
		raw.Northing = append(raw.Northing, vals[1])
		raw.Elevation = append(raw.Elevation, vals[2])
		raw.Lat = append(raw.Lat, vals[3])
		raw.Lon = append(raw.Lon, vals[4])
	}
	if err := scanner.Err(); err != nil {
		return raw, fmt.Errorf("error reading profile: %w", err)
	}

	return raw, nil
}

// ReadFile opens and parses the profile file at path
func ReadFile(path string) (profile.RawProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return profile.RawProfile{}, err
	}
	defer f.Close()

	raw, err := Read(f)
	if err != nil {
		return raw, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

// Name identifies a profile file
type Name struct {
	Location string
	Year     int
	Number   int
	Path     string
}

// ID returns the profile name without the extension
func (n Name) ID() string {
	return fmt.Sprintf("%s %d %d", n.Location, n.Year, n.Number)
}

// ParseName parses a file name of the form "<Location> <Year> <N>.ext".
// The location may itself contain spaces.
func ParseName(name string) (Name, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	fields := strings.Fields(base)
	if len(fields) < 3 {
		return Name{}, fmt.Errorf("%q: %w", name, ErrBadName)
	}

	year, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return Name{}, fmt.Errorf("%q: %w: bad year", name, ErrBadName)
	}
	number, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return Name{}, fmt.Errorf("%q: %w: bad profile number", name, ErrBadName)
	}

	return Name{
		Location: strings.Join(fields[:len(fields)-2], " "),
		Year:     year,
		Number:   number,
		Path:     name,
	}, nil
}

// Group is every profile file of one location and year, ordered by number
type Group struct {
	Location string
	Year     int
	Files    []Name
}

// Discover finds the profile files in dir with the given extension (or
// DefaultExt) and groups them by location and year. Files that do not
// follow the naming scheme are returned as skipped.
func Discover(dir, ext string) (groups []Group, skipped []string, err error) {
	if ext == "" {
		ext = DefaultExt
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading input directory: %w", err)
	}

	index := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}

		name, err := ParseName(filepath.Join(dir, e.Name()))
		if err != nil {
			skipped = append(skipped, e.Name())
			continue
		}

		key := fmt.Sprintf("%s\x00%d", name.Location, name.Year)
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, Group{Location: name.Location, Year: name.Year})
		}
		groups[g].Files = append(groups[g].Files, name)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Location != groups[j].Location {
			return groups[i].Location < groups[j].Location
		}
		return groups[i].Year < groups[j].Year
	})
	for _, g := range groups {
		sort.Slice(g.Files, func(i, j int) bool { return g.Files[i].Number < g.Files[j].Number })
	}

	return groups, skipped, nil
}
