package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/fleet"
)

// placementOrder is the order in which sides assign waiting columns to lanes
// before the first round.
var placementOrder = []combat.Side{
	combat.Attacker, combat.Defender,
	combat.Defender, combat.Attacker,
	combat.Attacker, combat.Defender,
}

// EncounterHandler runs encounters from fleet import to the end of combat.
type EncounterHandler struct {
	engine *combat.Engine
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEncounterHandler creates an EncounterHandler.
//
// Precondition: engine and logger must be non-nil; store may be nil, in which
// case snapshots are not persisted.
// Postcondition: Returns a non-nil EncounterHandler.
func NewEncounterHandler(engine *combat.Engine, store Store, logger *zap.Logger) *EncounterHandler {
	return &EncounterHandler{
		engine: engine,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Engine returns the encounter registry the handler runs against.
func (h *EncounterHandler) Engine() *combat.Engine { return h.engine }

// Start opens a new encounter in ch and runs it until combat ends.
//
// Precondition: attacker and defender must have distinct IDs.
// Postcondition: Returns an error wrapping combat.ErrEncounterActive when ch
// already hosts an encounter, ctx.Err() on shutdown, or the error that
// ended the encounter early.
func (h *EncounterHandler) Start(ctx context.Context, ch Channel, attacker, defender combat.Identity) error {
	enc, err := h.engine.Start(ch.ID(), attacker, defender)
	if err != nil {
		return err
	}
	h.logger.Info("encounter started",
		zap.String("encounter", enc.ID),
		zap.String("channel", enc.ChannelID),
		zap.String("attacker", attacker.ID),
		zap.String("defender", defender.ID),
	)
	h.save(ctx, enc)
	return h.Run(ctx, ch, enc)
}

// Resume restores a stored encounter and continues it from its saved round.
//
// Precondition: ch.ID() must equal sn.ChannelID.
// Postcondition: As for Start.
func (h *EncounterHandler) Resume(ctx context.Context, ch Channel, sn combat.Snapshot) error {
	s, err := sn.Status()
	if err != nil {
		return err
	}
	enc, err := h.engine.Restore(sn.ID, sn.ChannelID, s)
	if err != nil {
		return err
	}
	h.logger.Info("encounter resumed",
		zap.String("encounter", enc.ID),
		zap.String("channel", enc.ChannelID),
		zap.String("round", s.Round.String()),
	)
	if err := ch.SendLine(ctx, "Resuming combat after a restart"); err != nil {
		h.engine.End(enc.ChannelID)
		return err
	}
	return h.Run(ctx, ch, enc)
}

// Run drives enc to Finished. The encounter is removed from the engine when
// Run returns.
//
// Postcondition: enc is Finished unless ctx was cancelled, in which case the
// last saved snapshot is left unfinished so the encounter can resume.
func (h *EncounterHandler) Run(ctx context.Context, ch Channel, enc *combat.Encounter) error {
	defer h.engine.End(enc.ChannelID)
	log := h.logger.With(zap.String("encounter", enc.ID), zap.String("channel", enc.ChannelID))

	if err := h.refreshSummary(ctx, ch, enc); err != nil {
		return h.abort(ctx, ch, enc, log, err)
	}

	if enc.State().Round == combat.Pending {
		if err := h.collectFleets(ctx, ch, enc); err != nil {
			return h.abort(ctx, ch, enc, log, err)
		}
		if err := enc.Do(func(s *combat.Status) error { return s.Advance() }); err != nil {
			return h.abort(ctx, ch, enc, log, err)
		}
		h.save(ctx, enc)
	}

	for !enc.State().Finished() {
		if err := h.playRound(ctx, ch, enc, log); err != nil {
			return h.abort(ctx, ch, enc, log, err)
		}
	}

	log.Info("encounter finished")
	return h.refreshSummary(ctx, ch, enc)
}

// abort ends enc after err. A cancelled context leaves the encounter
// resumable; any other error finishes it.
func (h *EncounterHandler) abort(ctx context.Context, ch Channel, enc *combat.Encounter, log *zap.Logger, err error) error {
	if ctx.Err() != nil {
		log.Info("encounter interrupted", zap.Error(err))
		return ctx.Err()
	}
	log.Warn("encounter abandoned", zap.Error(err))
	_ = enc.Do(func(s *combat.Status) error {
		s.Retreat()
		return nil
	})
	h.save(ctx, enc)

	msg := "Combat abandoned: " + err.Error()
	if errors.Is(err, ErrPromptTimeout) {
		msg = "No response from a player, combat finished"
	}
	if sendErr := ch.SendLine(ctx, msg); sendErr != nil {
		log.Warn("reporting abandoned encounter", zap.Error(sendErr))
	}
	if sumErr := h.refreshSummary(ctx, ch, enc); sumErr != nil {
		log.Warn("refreshing summary", zap.Error(sumErr))
	}
	return fmt.Errorf("encounter %s: %w", enc.ID, err)
}

// collectFleets asks each side without ships for its fleet notation,
// attacker first.
func (h *EncounterHandler) collectFleets(ctx context.Context, ch Channel, enc *combat.Encounter) error {
	state := enc.State()
	if err := ch.SendLine(ctx, fmt.Sprintf("Combat started, %s attacks %s",
		ch.Mention(state.Attacker), ch.Mention(state.Defender))); err != nil {
		return err
	}
	for _, side := range []combat.Side{combat.Attacker, combat.Defender} {
		if state.Fleet(side).HasShips() {
			continue
		}
		if err := h.importFleet(ctx, ch, enc, state.Identity(side)); err != nil {
			return err
		}
	}
	return nil
}

// importFleet re-prompts user until they post a valid, non-empty fleet.
func (h *EncounterHandler) importFleet(ctx context.Context, ch Channel, enc *combat.Encounter, user combat.Identity) error {
	if err := ch.SendLine(ctx, fmt.Sprintf("%s copy your `fleet-list` from your spreadsheet to import your fleet", ch.Mention(user))); err != nil {
		return err
	}
	for {
		text, err := ch.AwaitMessage(ctx, user)
		if err != nil {
			return err
		}
		err = enc.Do(func(s *combat.Status) error {
			l, err := fleet.ParseNotation(text)
			if err != nil {
				return err
			}
			if !l.HasShips() {
				return ErrEmptyFleet
			}
			return s.ImportFleet(user.ID, text)
		})
		if err != nil {
			if errors.Is(err, fleet.ErrInvalidToken) || errors.Is(err, ErrEmptyFleet) {
				if err := ch.SendLine(ctx, fmt.Sprintf("%s, could not import fleet: %v. Please try again", ch.Mention(user), err)); err != nil {
					return err
				}
				continue
			}
			return err
		}
		h.logger.Debug("fleet imported", zap.String("encounter", enc.ID), zap.String("user", user.ID))
		if err := ch.SendLine(ctx, "Importing fleet now..."); err != nil {
			return err
		}
		h.save(ctx, enc)
		return h.refreshSummary(ctx, ch, enc)
	}
}

// playRound runs the current round: fleet adjustments, the fight or
// retreat decision, resolution, then the move to the next round.
func (h *EncounterHandler) playRound(ctx context.Context, ch Channel, enc *combat.Encounter, log *zap.Logger) error {
	round := enc.State().Round
	log = log.With(zap.String("round", round.String()))

	for _, side := range []combat.Side{combat.Attacker, combat.Defender} {
		var err error
		if round == combat.MissileOne {
			err = h.confirmPatrol(ctx, ch, enc, side)
		} else {
			err = h.offerSwap(ctx, ch, enc, side)
		}
		if err != nil {
			return err
		}
	}

	if err := h.refreshSummary(ctx, ch, enc); err != nil {
		return err
	}
	if err := ch.SendLine(ctx, round.Announcement()); err != nil {
		return err
	}

	retreats := 0
	state := enc.State()
	for _, side := range []combat.Side{combat.Attacker, combat.Defender} {
		user := state.Identity(side)
		key, err := ch.PromptChoice(ctx, user,
			fmt.Sprintf("%s, will you fight or retreat?", ch.Mention(user)),
			[]Choice{{Key: ChoiceFight, Label: "Fight"}, {Key: ChoiceRetreat, Label: "Retreat"}})
		if err != nil {
			return err
		}
		switch key {
		case ChoiceFight:
		case ChoiceRetreat:
			retreats++
			log.Info("player retreated", zap.String("user", user.ID))
		default:
			return fmt.Errorf("%w: %q", ErrInvalidChoice, key)
		}
	}

	if retreats == 2 {
		_ = enc.Do(func(s *combat.Status) error {
			s.Retreat()
			return nil
		})
		h.save(ctx, enc)
		return ch.SendLine(ctx, "Both players have retreated, combat finished")
	}
	if err := ch.SendLine(ctx, "Combat will continue for another round"); err != nil {
		return err
	}

	if round == combat.MissileOne {
		for _, side := range placementOrder {
			if err := h.requestShips(ctx, ch, enc, side); err != nil {
				return err
			}
		}
	}

	var lines []string
	err := enc.Do(func(s *combat.Status) error {
		var err error
		lines, err = s.ResolveRound()
		if err != nil {
			return err
		}
		if retreats > 0 {
			s.Retreat()
			return nil
		}
		return s.Advance()
	})
	if err != nil {
		return err
	}
	log.Info("round resolved", zap.Int("log_lines", len(lines)))
	h.save(ctx, enc)

	for _, line := range lines {
		if err := ch.SendLine(ctx, line); err != nil {
			return err
		}
	}
	if retreats > 0 {
		if err := ch.SendLine(ctx, "A player has retreated, combat finished"); err != nil {
			return err
		}
	}
	return h.refreshSummary(ctx, ch, enc)
}

// confirmPatrol asks side whether its fleet is in patrol mode.
func (h *EncounterHandler) confirmPatrol(ctx context.Context, ch Channel, enc *combat.Encounter, side combat.Side) error {
	state := enc.State()
	user := state.Identity(side)
	says := "is not"
	if state.Fleet(side).PatrolMode {
		says = "is"
	}
	key, err := ch.PromptChoice(ctx, user,
		fmt.Sprintf("%s, please confirm whether your fleet is in patrol mode (your fleet list says that it %s)", ch.Mention(user), says),
		[]Choice{{Key: ChoiceYes, Label: "Patrol mode"}, {Key: ChoiceNo, Label: "Not in patrol mode"}})
	if err != nil {
		return err
	}
	if key != ChoiceYes && key != ChoiceNo {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, key)
	}
	return enc.Do(func(s *combat.Status) error {
		s.Fleet(side).PatrolMode = key == ChoiceYes
		return nil
	})
}

// requestShips lets side move one waiting column into a free lane.
func (h *EncounterHandler) requestShips(ctx context.Context, ch Channel, enc *combat.Encounter, side combat.Side) error {
	state := enc.State()
	user := state.Identity(side)
	l := state.Fleet(side)

	var columns []Choice
	for _, c := range sortedWaiting(*l) {
		columns = append(columns, Choice{
			Key:   strconv.Itoa(c.Number),
			Label: fmt.Sprintf("Column %d: %s", c.Number, c.ShipList()),
		})
	}
	if len(columns) == 0 {
		return ch.SendLine(ctx, fmt.Sprintf("No unassigned ships left in fleet, skipping %s", user))
	}
	free := l.FreeLanes()
	if len(free) == 0 {
		return ch.SendLine(ctx, fmt.Sprintf("No free lanes left in fleet, skipping %s", user))
	}

	key, err := ch.PromptChoice(ctx, user,
		fmt.Sprintf("%s, please choose the fleet column you want to add.", ch.Mention(user)), columns)
	if err != nil {
		return err
	}
	number, err := pickColumn(key, columns)
	if err != nil {
		return err
	}

	key, err = ch.PromptChoice(ctx, user,
		fmt.Sprintf("%s, please choose which lane you want to add fleet column %d to", ch.Mention(user), number),
		laneChoices(free))
	if err != nil {
		return err
	}
	lane, err := pickLane(key, free)
	if err != nil {
		return err
	}

	if err := enc.Do(func(s *combat.Status) error { return s.Fleet(side).SetPlacement(number, lane) }); err != nil {
		return err
	}
	if err := ch.SendLine(ctx, fmt.Sprintf("Moving fleet column %d to the %s lane", number, strings.ToLower(lane.String()))); err != nil {
		return err
	}
	return h.refreshSummary(ctx, ch, enc)
}

// offerSwap lets side exchange a fighting column with a waiting one, or move
// a waiting column into a free lane.
func (h *EncounterHandler) offerSwap(ctx context.Context, ch Channel, enc *combat.Encounter, side combat.Side) error {
	state := enc.State()
	user := state.Identity(side)
	l := state.Fleet(side)

	opts, err := l.SwapOptions()
	if errors.Is(err, fleet.ErrNoWaitingFleet) {
		return ch.SendLine(ctx, fmt.Sprintf("%s has no waiting fleets, skipping fleet movement", user))
	}
	if err != nil {
		return err
	}

	var targets []Choice
	for _, occ := range opts.Lanes {
		targets = append(targets, Choice{
			Key:   strconv.Itoa(occ.Column),
			Label: fmt.Sprintf("Column %d (%s)", occ.Column, strings.ToLower(occ.Placement.String())),
		})
	}
	free := l.FreeLanes()
	targets = append(targets, laneChoices(free)...)
	targets = append(targets, Choice{Key: ChoiceSkip, Label: "Keep current columns"})

	key, err := ch.PromptChoice(ctx, user,
		fmt.Sprintf("%s, if you wish to swap a fleet column with a waiting fleet, choose the column you wish to move", ch.Mention(user)),
		targets)
	if err != nil {
		return err
	}
	if key == ChoiceSkip {
		return nil
	}

	incoming := opts.Waiting[0]
	if len(opts.Waiting) > 1 {
		var waiting []Choice
		for _, n := range opts.Waiting {
			c, _ := l.WhereNumber(n)
			waiting = append(waiting, Choice{Key: strconv.Itoa(n), Label: fmt.Sprintf("Column %d: %s", n, c.ShipList())})
		}
		wkey, err := ch.PromptChoice(ctx, user,
			fmt.Sprintf("%s, choose which waiting fleet you wish to swap in", ch.Mention(user)), waiting)
		if err != nil {
			return err
		}
		if incoming, err = pickColumn(wkey, waiting); err != nil {
			return err
		}
	}

	var msg string
	if lane, err := pickLane(key, free); err == nil {
		err = enc.Do(func(s *combat.Status) error { return s.Fleet(side).SetPlacement(incoming, lane) })
		if err != nil {
			return err
		}
		msg = fmt.Sprintf("%s moved fleet column %d to the %s lane", ch.Mention(user), incoming, strings.ToLower(lane.String()))
	} else {
		outgoing, err := pickColumn(key, targets)
		if err != nil {
			return err
		}
		if err := enc.Do(func(s *combat.Status) error { return s.Fleet(side).SwapColumns(outgoing, incoming) }); err != nil {
			return err
		}
		msg = fmt.Sprintf("%s swapped column %d with column %d", ch.Mention(user), outgoing, incoming)
	}
	if err := ch.SendLine(ctx, msg); err != nil {
		return err
	}
	return h.refreshSummary(ctx, ch, enc)
}

func (h *EncounterHandler) refreshSummary(ctx context.Context, ch Channel, enc *combat.Encounter) error {
	return ch.EditSummary(ctx, enc.State().String())
}

// save persists enc. Storage failures are logged and do not stop combat.
func (h *EncounterHandler) save(ctx context.Context, enc *combat.Encounter) {
	if h.store == nil {
		return
	}
	sn := enc.Snapshot()
	sn.UpdatedAt = h.now().UTC()
	if err := h.store.Save(ctx, sn); err != nil {
		h.logger.Warn("saving encounter snapshot",
			zap.String("encounter", enc.ID),
			zap.Error(err),
		)
	}
}

// sortedWaiting returns the non-empty waiting columns ordered by number.
func sortedWaiting(l fleet.List) []fleet.Column {
	var out []fleet.Column
	for _, c := range l.WhereColumn(fleet.Waiting) {
		if !c.Empty() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func laneChoices(lanes []fleet.Placement) []Choice {
	out := make([]Choice, 0, len(lanes))
	for _, p := range lanes {
		name := strings.ToLower(p.String())
		out = append(out, Choice{Key: name, Label: "Empty " + name + " lane"})
	}
	return out
}

func offered(key string, choices []Choice) bool {
	for _, c := range choices {
		if c.Key == key {
			return true
		}
	}
	return false
}

func pickColumn(key string, choices []Choice) (int, error) {
	if !offered(key, choices) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, key)
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, key)
	}
	return n, nil
}

func pickLane(key string, free []fleet.Placement) (fleet.Placement, error) {
	p, err := fleet.ParsePlacement(key)
	if err != nil {
		return fleet.Waiting, fmt.Errorf("%w: %q", ErrInvalidChoice, key)
	}
	for _, f := range free {
		if f == p {
			return p, nil
		}
	}
	return fleet.Waiting, fmt.Errorf("%w: %q", ErrInvalidChoice, key)
}
