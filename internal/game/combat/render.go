package combat

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// ErrMalformedSummary is returned when summary text lacks the status header
// or either participant line.
var ErrMalformedSummary = errors.New("malformed combat summary")

var (
	headerPattern      = regexp.MustCompile("^`!!! Combat status(?: - (round (\\d+)|finished))? !!!`$")
	participantPattern = regexp.MustCompile("^(Attacker|Defender): `(.+)`$")
)

// Header returns the first summary line for r.
func Header(r Round) string {
	switch {
	case r == Pending:
		return "`!!! Combat status !!!`"
	case r.Active():
		return fmt.Sprintf("`!!! Combat status - round %d !!!`", r.Number())
	default:
		return "`!!! Combat status - finished !!!`"
	}
}

// String renders the pinned summary: header, participants, each side's
// waiting columns sorted by number, patrol flags, and the active lanes.
func (s *Status) String() string {
	rows := []string{
		Header(s.Round),
		fmt.Sprintf("Attacker: `%s`", s.Attacker.DisplayName),
		fmt.Sprintf("Defender: `%s`", s.Defender.DisplayName),
	}
	for _, side := range []Side{Attacker, Defender} {
		f := s.Fleet(side)
		if f.PatrolMode {
			rows = append(rows, fmt.Sprintf("%s fleet is in PATROL MODE", side))
		}
	}
	for _, side := range []Side{Attacker, Defender} {
		waiting := s.Fleet(side).WhereColumn(fleet.Waiting)
		if len(waiting) == 0 {
			continue
		}
		sort.SliceStable(waiting, func(i, j int) bool { return waiting[i].Number < waiting[j].Number })
		parts := make([]string, len(waiting))
		for i, c := range waiting {
			parts[i] = c.String()
		}
		rows = append(rows, fmt.Sprintf("%s ships to apply:\n%s", side, strings.Join(parts, "\n")))
	}
	if table := s.laneTable(); table != "" {
		rows = append(rows, table)
	}
	return strings.Join(rows, "\n")
}

// laneTable renders the occupied lanes, or "" when no lane is occupied.
func (s *Status) laneTable() string {
	var lines []string
	for _, p := range fleet.ActivePlacements() {
		a, aok := s.AttackerFleet.At(p)
		d, dok := s.DefenderFleet.At(p)
		if !aok && !dok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-6s | %s | %s", p,
			laneCell(a, aok, s.AttackerFleet.PatrolMode),
			laneCell(d, dok, s.DefenderFleet.PatrolMode)))
	}
	if len(lines) == 0 {
		return ""
	}
	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

func laneCell(c fleet.Column, ok, patrol bool) string {
	if !ok {
		return "-"
	}
	if c.Empty() {
		return fmt.Sprintf("column %d (destroyed)", c.Number)
	}
	return fmt.Sprintf("column %d atk %d def %d: %s", c.Number, c.Attack(patrol), c.Defence(patrol), c.ShipList())
}

// Summary is what can be recovered from summary text alone.
type Summary struct {
	Round    Round
	Attacker string
	Defender string
}

// ParseSummary reads the round and participant display names back from
// the output of Status.String.
//
// Postcondition: Returns the Summary, or an error wrapping ErrMalformedSummary.
func ParseSummary(text string) (Summary, error) {
	lines := strings.Split(text, "\n")
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return Summary{}, fmt.Errorf("%w: header %q", ErrMalformedSummary, lines[0])
	}

	var sum Summary
	switch {
	case m[1] == "finished":
		sum.Round = Finished
	case m[2] != "":
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Summary{}, fmt.Errorf("%w: header %q: %w", ErrMalformedSummary, lines[0], err)
		}
		r, ok := roundFromNumber(n)
		if !ok {
			return Summary{}, fmt.Errorf("%w: round %d", ErrMalformedSummary, n)
		}
		sum.Round = r
	default:
		sum.Round = Pending
	}

	for _, line := range lines[1:] {
		pm := participantPattern.FindStringSubmatch(strings.TrimSpace(line))
		if pm == nil {
			continue
		}
		if pm[1] == "Attacker" && sum.Attacker == "" {
			sum.Attacker = pm[2]
		} else if pm[1] == "Defender" && sum.Defender == "" {
			sum.Defender = pm[2]
		}
	}
	if sum.Attacker == "" || sum.Defender == "" {
		return Summary{}, fmt.Errorf("%w: missing participant", ErrMalformedSummary)
	}
	return sum, nil
}
