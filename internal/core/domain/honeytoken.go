package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/yndnr/honeymesh/pkg/token"
)

// Record constraints.
const (
	// KeyPrefix prefixes every honeytoken key in the backing store.
	KeyPrefix = "honeytoken:"

	MaxContextLength = 512
)

// Honeytoken is the persisted record of one minted token.
//
// TokenID, Context and CreatedAt never change after minting. The access
// fields only move forward: Accessed flips to true once, AccessCount grows by
// one per recorded access, AccessIPs only gains entries.
type Honeytoken struct {
	TokenID      string     `json:"token_id"`
	Context      string     `json:"context"`
	CreatedAt    time.Time  `json:"created_at"`
	Accessed     bool       `json:"accessed"`
	AccessCount  int64      `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	AccessIPs    []string   `json:"access_ips"`
}

// NewHoneytoken mints a record with a fresh identifier.
func NewHoneytoken(context string, now time.Time) (*Honeytoken, error) {
	if strings.TrimSpace(context) == "" {
		return nil, ErrInvalidArgument.WithDetails("context is required")
	}
	if len(context) > MaxContextLength {
		return nil, ErrInvalidArgument.WithDetails("context too long")
	}

	id, err := token.NewID()
	if err != nil {
		return nil, err
	}

	return &Honeytoken{
		TokenID:   id,
		Context:   context,
		CreatedAt: now.UTC(),
		AccessIPs: []string{},
	}, nil
}

// StorageKey returns the backing store key for a token id.
func StorageKey(tokenID string) string {
	return KeyPrefix + tokenID
}

// RecordAccess applies one access from ip at the given time. An empty ip
// counts as an access but adds no address.
func (h *Honeytoken) RecordAccess(ip string, at time.Time) {
	h.Accessed = true
	h.AccessCount++
	ts := at.UTC()
	h.LastAccessed = &ts
	if ip != "" && !h.HasIP(ip) {
		h.AccessIPs = append(h.AccessIPs, ip)
	}
}

// HasIP reports whether ip has already accessed the token.
func (h *Honeytoken) HasIP(ip string) bool {
	return slices.Contains(h.AccessIPs, ip)
}

// Validate checks the record invariants.
func (h *Honeytoken) Validate() error {
	if !token.Valid(h.TokenID) {
		return ErrRecordMalformed.WithDetails("invalid token_id")
	}
	if h.Context == "" || len(h.Context) > MaxContextLength {
		return ErrRecordMalformed.WithDetails("invalid context")
	}
	if h.CreatedAt.IsZero() {
		return ErrRecordMalformed.WithDetails("missing created_at")
	}
	if h.AccessCount < 0 {
		return ErrRecordMalformed.WithDetails("negative access_count")
	}
	if h.Accessed != (h.AccessCount > 0) {
		return ErrRecordMalformed.WithDetails("accessed disagrees with access_count")
	}
	if h.Accessed && h.LastAccessed == nil {
		return ErrRecordMalformed.WithDetails("accessed record without last_accessed")
	}
	if !h.Accessed && h.LastAccessed != nil {
		return ErrRecordMalformed.WithDetails("unaccessed record with last_accessed")
	}
	seen := make(map[string]struct{}, len(h.AccessIPs))
	for _, ip := range h.AccessIPs {
		if ip == "" {
			return ErrRecordMalformed.WithDetails("invalid access_ips entry")
		}
		if _, dup := seen[ip]; dup {
			return ErrRecordMalformed.WithDetails("duplicate access_ips entry")
		}
		seen[ip] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy.
func (h *Honeytoken) Clone() *Honeytoken {
	c := *h
	if h.LastAccessed != nil {
		ts := *h.LastAccessed
		c.LastAccessed = &ts
	}
	c.AccessIPs = slices.Clone(h.AccessIPs)
	if c.AccessIPs == nil {
		c.AccessIPs = []string{}
	}
	return &c
}
