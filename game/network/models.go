package network

import (
	"log/slog"

	"TwistedChess/game/core"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

var log = slog.Default().With("package", "network")

var validate = validator.New()

// MoveDescriptor is the only payload exchanged between peers:
//
//	{"from":[6,4],"to":[4,4],"promotion":"Q"}
type MoveDescriptor struct {
	From      []int  `json:"from" validate:"len=2,dive,min=0,max=7"`
	To        []int  `json:"to" validate:"len=2,dive,min=0,max=7"`
	Promotion string `json:"promotion,omitempty"`
}

// NewMoveDescriptor builds the descriptor of from→to. An empty promotion is
// left out of the encoding.
func NewMoveDescriptor(from, to core.Square, promotion string) MoveDescriptor {
	return MoveDescriptor{
		From:      []int{from.Row, from.Col},
		To:        []int{to.Row, to.Col},
		Promotion: promotion,
	}
}

// Squares returns the origin and destination. Only call it on a descriptor
// that passed Validate.
func (m MoveDescriptor) Squares() (from, to core.Square) {
	return core.Sq(m.From[0], m.From[1]), core.Sq(m.To[0], m.To[1])
}

// PromotionKind returns the requested promotion, Queen when absent or unknown.
func (m MoveDescriptor) PromotionKind() core.Kind {
	return core.ParsePromotion(m.Promotion)
}

// Validate checks both coordinates are two in-range numbers.
func (m MoveDescriptor) Validate() error {
	return validate.Struct(m)
}

// Encode returns the JSON form of m.
func (m MoveDescriptor) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalJSON reads a descriptor. A promotion that is not a string is
// treated as absent, which promotes to Queen.
func (m *MoveDescriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		From      []int           `json:"from"`
		To        []int           `json:"to"`
		Promotion json.RawMessage `json:"promotion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var letter string
	if len(raw.Promotion) > 0 && json.Unmarshal(raw.Promotion, &letter) != nil {
		letter = ""
	}
	*m = MoveDescriptor{From: raw.From, To: raw.To, Promotion: letter}
	return nil
}

// DecodeMove parses one payload. ok is false for anything that is not a
// well-formed, in-range descriptor; such payloads are meant to be dropped.
func DecodeMove(data []byte) (m MoveDescriptor, ok bool) {
	if err := json.Unmarshal(data, &m); err != nil {
		log.Debug("dropping undecodable payload", "error", err)
		return MoveDescriptor{}, false
	}
	if err := m.Validate(); err != nil {
		log.Debug("dropping invalid move", "error", err)
		return MoveDescriptor{}, false
	}
	return m, true
}
