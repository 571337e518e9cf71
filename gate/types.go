package gate

import (
	"strings"
	"time"
)

// TablePhase is the table-wide round phase.
type TablePhase byte

const (
	TablePhaseWaiting   TablePhase = 0 // accepting a deal request
	TablePhaseInRound   TablePhase = 1 // decisions pending
	TablePhaseCountdown TablePhase = 2 // resolved, next deal pending
)

var TablePhaseDictionary = map[TablePhase]string{
	TablePhaseWaiting:   "WAITING",
	TablePhaseInRound:   "IN_ROUND",
	TablePhaseCountdown: "COUNTDOWN",
}

func (p TablePhase) String() string {
	if s, ok := TablePhaseDictionary[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// DecisionPhase is a participant's position within the current round.
//
//	IDLE -> SHOOTING | SHOOTING_SPECIAL | DONE(auto) -> BET_PLACED -> DONE
type DecisionPhase byte

const (
	DecisionIdle            DecisionPhase = 0
	DecisionShooting        DecisionPhase = 1
	DecisionShootingSpecial DecisionPhase = 2
	DecisionBetPlaced       DecisionPhase = 3
	DecisionDone            DecisionPhase = 4
	// DecisionForcedPass is reserved: it can be passed out of but nothing
	// enters it.
	DecisionForcedPass DecisionPhase = 5
)

var DecisionPhaseDictionary = map[DecisionPhase]string{
	DecisionIdle:            "IDLE",
	DecisionShooting:        "SHOOTING",
	DecisionShootingSpecial: "SHOOTING_SPECIAL",
	DecisionBetPlaced:       "BET_PLACED",
	DecisionDone:            "DONE",
	DecisionForcedPass:      "FORCED_PASS",
}

func (p DecisionPhase) String() string {
	if s, ok := DecisionPhaseDictionary[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Pending reports whether the participant still owes a decision this round.
func (p DecisionPhase) Pending() bool {
	return p == DecisionShooting || p == DecisionShootingSpecial || p == DecisionForcedPass
}

// Choice is the side picked on a pair gate.
type Choice byte

const (
	ChoiceNone Choice = 0
	ChoiceHigh Choice = 1
	ChoiceLow  Choice = 2
)

var ChoiceDictionary = map[Choice]string{
	ChoiceNone: "",
	ChoiceHigh: "high",
	ChoiceLow:  "low",
}

func (c Choice) String() string { return ChoiceDictionary[c] }

// ParseChoice accepts "high"/"low" in any case. Anything else is ChoiceNone.
func ParseChoice(raw string) Choice {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ChoiceHigh
	case "low":
		return ChoiceLow
	default:
		return ChoiceNone
	}
}

// Outcome classifies a result card against a participant's gate.
type Outcome byte

const (
	OutcomeNone       Outcome = 0
	OutcomeWin        Outcome = 1
	OutcomeHitPost    Outcome = 2 // ordinary gate, result equals a post
	OutcomeMiss       Outcome = 3 // ordinary gate, result outside
	OutcomeLoss       Outcome = 4 // pair gate, wrong side
	OutcomeTriplePost Outcome = 5 // pair gate, result equals the pair
)

var OutcomeDictionary = map[Outcome]string{
	OutcomeNone:       "none",
	OutcomeWin:        "win",
	OutcomeHitPost:    "hit_post",
	OutcomeMiss:       "miss",
	OutcomeLoss:       "loss",
	OutcomeTriplePost: "triple_post",
}

func (o Outcome) String() string {
	if s, ok := OutcomeDictionary[o]; ok {
		return s
	}
	return "unknown"
}

// IsPenalty is true for the double-cost outcomes.
func (o Outcome) IsPenalty() bool {
	return o == OutcomeHitPost || o == OutcomeTriplePost
}

func (o Outcome) label() string {
	switch o {
	case OutcomeHitPost:
		return "HIT POST"
	case OutcomeTriplePost:
		return "TRIPLE POST"
	case OutcomeMiss:
		return "MISS"
	case OutcomeLoss:
		return "LOSS"
	case OutcomeWin:
		return "WIN"
	}
	return ""
}

// ActionType is an inbound participant action.
type ActionType byte

const (
	ActionNone         ActionType = 0
	ActionDeal         ActionType = 1
	ActionShoot        ActionType = 2
	ActionShootSpecial ActionType = 3
	ActionPass         ActionType = 4
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:         "NONE",
	ActionDeal:         "DEAL",
	ActionShoot:        "SHOOT",
	ActionShootSpecial: "SHOOT_SPECIAL",
	ActionPass:         "PASS",
}

func (a ActionType) String() string {
	if s, ok := ActionTypeDictionary[a]; ok {
		return s
	}
	return "NONE"
}

// ParseAction maps the wire name to an ActionType, ActionNone if unknown.
func ParseAction(raw string) ActionType {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for a, s := range ActionTypeDictionary {
		if a != ActionNone && s == name {
			return a
		}
	}
	return ActionNone
}

const (
	DefaultStartingBalance  int64         = 1000
	DefaultAnte             int64         = 10
	DefaultDecisionTimeout  time.Duration = 5 * time.Second
	DefaultCountdownSeconds int           = 3

	maxNameRunes = 32
	defaultName  = "Guest"
)

// Status and result messages shown to players.
const (
	msgWaiting          = "Waiting for players..."
	msgJoined           = "%s joined the game."
	msgLeft             = "%s disconnected."
	msgDealt            = "Cards dealt! You have %d seconds!"
	msgRoundComplete    = "Round complete! Next deal in %ds..."
	msgCountdown        = "Next deal in %ds..."
	msgCountdownAborted = "Auto-deal cancelled. Click Start Game."
	msgRedistributed    = "A player went broke! Pot ($%d) distributed evenly (+$%d each)."

	resultConsecutive = "Consecutive! Auto Pass."
	resultTimeUp      = "Time up! Auto Pass."
	resultBetPlaced   = "Bet placed. Waiting..."
	resultPassed      = "Passed."
	resultLost        = "%s! -$%d"
	resultWon         = "WIN! +$%d"
	resultWonSplit    = "WIN! +$%d (pot split)"
)
