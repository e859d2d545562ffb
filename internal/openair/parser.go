package openair

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultArcStep is the angular resolution, in degrees, used to draw arcs and circles.
const DefaultArcStep = 5.0

var (
	ErrNoCenter       = errors.New("arc without V X= center")
	ErrTooFewPoints   = errors.New("airspace has fewer than 3 points")
	ErrUnknownCommand = errors.New("unknown command")
)

// Parser reads the OpenAir text format.
type Parser struct {
	skipFailures bool
	arcStep      float64
}

// NewParser creates a parser. With skipFailures set, a malformed airspace is
// logged and dropped instead of failing the whole file.
func NewParser(skipFailures bool) *Parser {
	return &Parser{
		skipFailures: skipFailures,
		arcStep:      DefaultArcStep,
	}
}

// recordState accumulates one AC block.
type recordState struct {
	airspace  Airspace
	center    *orb.Point
	clockwise bool
	broken    error
	brokenAt  int
}

func newRecord(class string, line int) *recordState {
	return &recordState{
		airspace:  Airspace{Class: class, Line: line},
		clockwise: true,
	}
}

func (r *recordState) fail(line int, err error) {
	if r.broken == nil {
		r.broken = err
		r.brokenAt = line
	}
}

// ParseFile parses an OpenAir file from disk.
func (p *Parser) ParseFile(path string) ([]Airspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads every airspace from r in file order.
func (p *Parser) Parse(r io.Reader) ([]Airspace, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var airspaces []Airspace
	var current *recordState
	lineNo := 0

	flush := func() error {
		if current == nil {
			return nil
		}
		rec := current
		current = nil

		if rec.broken == nil {
			rec.broken = p.closeRing(&rec.airspace)
			rec.brokenAt = rec.airspace.Line
		}
		if rec.broken != nil {
			perr := &ParseError{Line: rec.brokenAt, Record: rec.airspace.Name, Err: rec.broken}
			if !p.skipFailures {
				return perr
			}
			log.Printf("OpenAir parser: skipping airspace: %v", perr)
			return nil
		}
		airspaces = append(airspaces, rec.airspace)
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}

		// Trailing comments: "DP 45:00:00 N 006:00:00 E * corner"
		if idx := strings.Index(line, " *"); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}

		command, arg := splitCommand(line)

		if command == "AC" {
			if err := flush(); err != nil {
				return nil, err
			}
			current = newRecord(arg, lineNo)
			continue
		}

		if current == nil {
			if p.skipFailures {
				log.Printf("OpenAir parser: line %d: %s outside of an airspace, ignored", lineNo, command)
				continue
			}
			return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%s before any AC command", command)}
		}
		if current.broken != nil {
			continue
		}

		if err := p.apply(current, command, arg); err != nil {
			current.fail(lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OpenAir data: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return airspaces, nil
}

func splitCommand(line string) (string, string) {
	command, arg, _ := strings.Cut(line, " ")
	return strings.ToUpper(command), strings.TrimSpace(arg)
}

func (p *Parser) apply(rec *recordState, command, arg string) error {
	a := &rec.airspace

	switch command {
	case "AN":
		a.Name = arg
	case "AH":
		a.Upper = arg
	case "AL":
		a.Lower = arg
	case "AT", "AY", "AF", "AG", "SP", "SB":
		// Labels, types, frequencies and styling carry no geometry.
	case "DP":
		pt, err := parseCoordinate(arg)
		if err != nil {
			return err
		}
		a.Ring = append(a.Ring, pt)
	case "V":
		return p.applyVariable(rec, arg)
	case "DC":
		if rec.center == nil {
			return ErrNoCenter
		}
		radius, err := parseRadius(arg)
		if err != nil {
			return err
		}
		a.Ring = append(a.Ring, circlePoints(*rec.center, radius, p.arcStep)...)
	case "DA":
		if rec.center == nil {
			return ErrNoCenter
		}
		parts := strings.Split(arg, ",")
		if len(parts) != 3 {
			return fmt.Errorf("DA expects radius,start,end: %q", arg)
		}
		values := make([]float64, 3)
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return fmt.Errorf("invalid DA value %q", part)
			}
			values[i] = v
		}
		if values[0] <= 0 {
			return fmt.Errorf("invalid DA radius %q", parts[0])
		}
		a.Ring = append(a.Ring, arcPoints(*rec.center, values[0], values[1], values[2], rec.clockwise, p.arcStep)...)
	case "DB":
		if rec.center == nil {
			return ErrNoCenter
		}
		from, to, ok := strings.Cut(arg, ",")
		if !ok {
			return fmt.Errorf("DB expects two coordinates: %q", arg)
		}
		start, err := parseCoordinate(from)
		if err != nil {
			return err
		}
		end, err := parseCoordinate(to)
		if err != nil {
			return err
		}
		a.Ring = append(a.Ring, arcBetween(*rec.center, start, end, rec.clockwise, p.arcStep)...)
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, command)
	}
	return nil
}

func (p *Parser) applyVariable(rec *recordState, arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("invalid variable %q", arg)
	}
	value = strings.TrimSpace(value)

	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "X":
		pt, err := parseCoordinate(value)
		if err != nil {
			return err
		}
		rec.center = &pt
	case "D":
		switch value {
		case "+":
			rec.clockwise = true
		case "-":
			rec.clockwise = false
		default:
			return fmt.Errorf("invalid direction %q", value)
		}
	case "W", "Z":
		// Airway width and zoom level are display hints.
	default:
		return fmt.Errorf("unknown variable %q", name)
	}
	return nil
}

func parseRadius(arg string) (float64, error) {
	radius, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil || radius <= 0 {
		return 0, fmt.Errorf("invalid radius %q", arg)
	}
	return radius, nil
}

// closeRing checks the point count and repeats the first point at the end.
func (p *Parser) closeRing(a *Airspace) error {
	if len(a.Ring) < 3 {
		return ErrTooFewPoints
	}
	if !a.Ring.Closed() {
		a.Ring = append(a.Ring, a.Ring[0])
	}
	return nil
}

// ToFeatureCollection turns parsed airspaces into GeoJSON polygons.
func ToFeatureCollection(airspaces []Airspace) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range airspaces {
		f := geojson.NewFeature(orb.Polygon{a.Ring})
		f.Properties["class"] = a.Class
		f.Properties["name"] = a.Name
		f.Properties["upper"] = a.Upper
		f.Properties["lower"] = a.Lower
		fc.Append(f)
	}
	return fc
}
