package events

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is the wire form of an Event: the variant's fields flattened next to
// a "type" discriminator. New optional fields must stay zero-value safe since
// payloads are replayed from the durable job log.
type Payload struct {
	Event Event
}

func NewPayload(e Event) Payload {
	return Payload{Event: e}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Event == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidEvent)
	}
	body, err := json.Marshal(p.Event)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(strconv.Quote(string(p.Event.Type())))
	return json.Marshal(fields)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	e, err := Decode(head.Type, data)
	if err != nil {
		return err
	}
	p.Event = e
	return nil
}

// Decode builds the variant named by t from its JSON fields. Unknown types
// fail loudly so a payload written by a newer producer is never silently
// dropped.
func Decode(t EventType, data []byte) (Event, error) {
	var (
		e   Event
		err error
	)
	switch t {
	case TypeCircleGrew:
		e, err = decodeAs[CircleGrew](data)
	case TypeCircleThresholdReached:
		e, err = decodeAs[CircleThresholdReached](data)
	case TypeIdentityVerificationApproved:
		e, err = decodeAs[IdentityVerificationApproved](data)
	case TypeIdentityVerificationDeclined:
		e, err = decodeAs[IdentityVerificationDeclined](data)
	case TypeIdentityVerificationReviewStarted:
		e, err = decodeAs[IdentityVerificationReviewStarted](data)
	case TypeTransactionInfo:
		e, err = decodeAs[TransactionInfo](data)
	case TypePriceChanged:
		e, err = decodeAs[PriceChanged](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidEvent, t, err)
	}
	return e, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
