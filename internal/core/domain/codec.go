package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// wireRecord mirrors Honeytoken with pointer fields so that missing keys can
// be told apart from zero values.
type wireRecord struct {
	TokenID      *string    `json:"token_id"`
	Context      *string    `json:"context"`
	CreatedAt    *time.Time `json:"created_at"`
	Accessed     *bool      `json:"accessed"`
	AccessCount  *int64     `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed"`
	AccessIPs    []string   `json:"access_ips"`
}

// EncodeRecord validates h and returns its JSON encoding.
func EncodeRecord(h *Honeytoken) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	out := h
	if h.AccessIPs == nil {
		out = h.Clone()
	}
	return json.Marshal(out)
}

// DecodeRecord parses a stored value.
//
// Decoding is strict: unknown fields, missing required fields, trailing data
// and invariant violations all yield ErrRecordMalformed.
func DecodeRecord(data []byte) (*Honeytoken, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return nil, ErrRecordMalformed.WithCause(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrRecordMalformed.WithDetails("trailing data after record")
	}

	switch {
	case w.TokenID == nil:
		return nil, ErrRecordMalformed.WithDetails("missing token_id")
	case w.Context == nil:
		return nil, ErrRecordMalformed.WithDetails("missing context")
	case w.CreatedAt == nil:
		return nil, ErrRecordMalformed.WithDetails("missing created_at")
	case w.Accessed == nil:
		return nil, ErrRecordMalformed.WithDetails("missing accessed")
	case w.AccessCount == nil:
		return nil, ErrRecordMalformed.WithDetails("missing access_count")
	case w.AccessIPs == nil:
		return nil, ErrRecordMalformed.WithDetails("missing access_ips")
	}

	h := &Honeytoken{
		TokenID:      *w.TokenID,
		Context:      *w.Context,
		CreatedAt:    w.CreatedAt.UTC(),
		Accessed:     *w.Accessed,
		AccessCount:  *w.AccessCount,
		LastAccessed: w.LastAccessed,
		AccessIPs:    w.AccessIPs,
	}
	if h.LastAccessed != nil {
		ts := h.LastAccessed.UTC()
		h.LastAccessed = &ts
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}
