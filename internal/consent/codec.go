// Package consent implements consent-state forgery for OneTrust-class
// platforms: extracting the cookie-category table from a page, classifying
// tracking categories, and rewriting the platform's consent cookie to
// express a target decision.
package consent

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/user/consent-crawler/internal/entity"
)

const (
	// ConsentCookieName is the OneTrust consent-state cookie.
	ConsentCookieName = "OptanonConsent"
	// BannerCookieName is the companion cookie whose presence suppresses the
	// banner re-prompt.
	BannerCookieName = "OptanonAlertBoxClosed"

	keyGroups           = "groups"
	keyInteractionCount = "interactionCount"
	keyLandingPath      = "landingPath"

	// landingPathSentinel marks the navigation as non-organic, mirroring
	// what the OneTrust SDK writes after any banner interaction.
	landingPathSentinel = "NotLandingPage"
)

type field struct {
	key   string
	value string
}

// State is a decoded consent cookie body: ordered key=value fields joined by
// ampersands on the wire. Field order is preserved through a decode/encode
// round trip; the SDK is sensitive to it.
type State struct {
	fields []field
}

// DecodeState parses an ampersand-joined key=value cookie body.
func DecodeState(raw string) *State {
	s := &State{}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		f := field{key: kv[0]}
		if len(kv) == 2 {
			f.value = kv[1]
		}
		s.fields = append(s.fields, f)
	}
	return s
}

// Encode serializes the state back to the ampersand-joined wire form.
func (s *State) Encode() string {
	parts := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		parts = append(parts, f.key+"="+f.value)
	}
	return strings.Join(parts, "&")
}

// Get returns the value of the named field.
func (s *State) Get(key string) (string, bool) {
	for _, f := range s.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return "", false
}

// Set replaces the named field in place, or appends it if absent.
func (s *State) Set(key, value string) {
	for i, f := range s.fields {
		if f.key == key {
			s.fields[i].value = value
			return
		}
	}
	s.fields = append(s.fields, field{key: key, value: value})
}

// Groups decodes the groups field into a decision mapping.
func (s *State) Groups() (entity.ConsentDecision, error) {
	raw, ok := s.Get(keyGroups)
	if !ok {
		return nil, fmt.Errorf("consent state has no %s field", keyGroups)
	}
	return DecodeGroups(raw)
}

// SetGroups replaces the groups field with the encoded decision mapping.
func (s *State) SetGroups(decision entity.ConsentDecision) {
	s.Set(keyGroups, EncodeGroups(decision))
}

// BumpInteractionCount increments the SDK's interaction counter, treating a
// missing or malformed value as zero.
func (s *State) BumpInteractionCount() {
	count := 0
	if raw, ok := s.Get(keyInteractionCount); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			count = n
		}
	}
	s.Set(keyInteractionCount, strconv.Itoa(count+1))
}

// MarkNonOrganic resets the landing path to the sentinel the SDK uses for
// non-organic navigation.
func (s *State) MarkNonOrganic() {
	s.Set(keyLandingPath, landingPathSentinel)
}

// EncodeGroups serializes a decision mapping as comma-joined id:flag pairs.
// Ids are sorted so encoding is deterministic.
func EncodeGroups(decision entity.ConsentDecision) string {
	ids := make([]string, 0, len(decision))
	for id := range decision {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+":"+strconv.Itoa(decision[id]))
	}
	return strings.Join(parts, ",")
}

// DecodeGroups parses comma-joined id:flag pairs into a decision mapping.
func DecodeGroups(raw string) (entity.ConsentDecision, error) {
	decision := entity.ConsentDecision{}
	if raw == "" {
		return decision, nil
	}
	for _, part := range strings.Split(raw, ",") {
		id, flagStr, ok := strings.Cut(part, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed groups entry %q", part)
		}
		flag, err := strconv.Atoi(flagStr)
		if err != nil || (flag != 0 && flag != 1) {
			return nil, fmt.Errorf("malformed consent flag in %q", part)
		}
		decision[id] = flag
	}
	return decision, nil
}
