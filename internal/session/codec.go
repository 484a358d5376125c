package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/gema-play-api/internal/models"
)

type envelope struct {
	ID        string                 `json:"id"`
	Variant   models.ExerciseVariant `json:"variant"`
	CreatedAt time.Time              `json:"created_at"`
	Payload   json.RawMessage        `json:"payload"`
}

func encodeSession(sess Session) ([]byte, error) {
	payload, err := json.Marshal(sess.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode session payload: %w", err)
	}
	return json.Marshal(envelope{
		ID:        sess.ID,
		Variant:   sess.Variant,
		CreatedAt: sess.CreatedAt.UTC(),
		Payload:   payload,
	})
}

func decodeSession(raw []byte) (Session, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Session{}, fmt.Errorf("decode session envelope: %w", err)
	}

	payload, err := decodePayload(env.Variant, env.Payload)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:        env.ID,
		Variant:   env.Variant,
		Payload:   payload,
		CreatedAt: env.CreatedAt,
	}, nil
}

func decodePayload(variant models.ExerciseVariant, raw json.RawMessage) (Payload, error) {
	switch variant {
	case models.VariantFindMistake:
		var artifact models.MistakeArtifact
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", variant, err)
		}
		return artifact, nil
	case models.VariantMissingLink:
		var puzzle models.MissingLinkPuzzle
		if err := json.Unmarshal(raw, &puzzle); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", variant, err)
		}
		return puzzle, nil
	case models.VariantTeachDialogue:
		var state models.DialogueState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", variant, err)
		}
		return state, nil
	default:
		return nil, fmt.Errorf("unknown session variant %q", variant)
	}
}
