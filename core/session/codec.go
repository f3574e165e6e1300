package session

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Reserved metadata keys live inside the persisted data document but
// are stripped from the user-visible map. The underscore prefix is the
// reserved namespace; Set and Remove reject it.
const (
	reservedPrefix = "_"

	keyCreatedAt    = "_created_at"
	keyLastActivity = "_last_activity_at"
	keyCSRFToken    = "_csrf_token"
	keyUserAgent    = "_user_agent"
	keyIPHash       = "_ip_hash"
)

// payloadVersion guards against decoding documents written by a future
// incompatible serializer.
const payloadVersion = 1

// payloadDocument is the persisted form of a session: a version tag and
// a single flat map holding user data plus reserved metadata keys.
type payloadDocument struct {
	Version int            `json:"v"`
	Data    map[string]any `json:"data"`
}

// encodePayload serializes the state's data map plus metadata. The JSON
// encoder sorts map keys, so the output is deterministic for identical
// state.
func encodePayload(st State) ([]byte, error) {
	doc := make(map[string]any, len(st.data)+5)
	for k, v := range st.data {
		doc[k] = v
	}

	doc[keyCreatedAt] = st.createdAt.UTC().Format(time.RFC3339Nano)
	doc[keyLastActivity] = st.lastActivityAt.UTC().Format(time.RFC3339Nano)
	if st.csrfHash != "" {
		doc[keyCSRFToken] = st.csrfHash
	}
	if st.userAgent != "" {
		doc[keyUserAgent] = st.userAgent
	}
	if st.ipHash != "" {
		doc[keyIPHash] = st.ipHash
	}

	return json.Marshal(payloadDocument{Version: payloadVersion, Data: doc})
}

// decodedPayload carries the deserialized document split back into user
// data and metadata. Missing timestamps stay zero; the engine defaults
// them to now (tolerant resume).
type decodedPayload struct {
	data           map[string]any
	createdAt      time.Time
	lastActivityAt time.Time
	csrfHash       string
	userAgent      string
	ipHash         string
}

// decodePayload parses stored bytes. Anything that is not a version-1
// document with a map payload is ErrCorruptPayload; the engine responds
// by destroying the stored entry and starting fresh.
func decodePayload(payload []byte) (decodedPayload, error) {
	var doc payloadDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return decodedPayload{}, errors.Join(ErrCorruptPayload, err)
	}
	if doc.Version != payloadVersion || doc.Data == nil {
		return decodedPayload{}, ErrCorruptPayload
	}

	out := decodedPayload{data: make(map[string]any, len(doc.Data))}
	for k, v := range doc.Data {
		if !strings.HasPrefix(k, reservedPrefix) {
			out.data[k] = v
			continue
		}

		switch k {
		case keyCreatedAt:
			out.createdAt = parseInstant(v)
		case keyLastActivity:
			out.lastActivityAt = parseInstant(v)
		case keyCSRFToken:
			out.csrfHash, _ = v.(string)
		case keyUserAgent:
			out.userAgent, _ = v.(string)
		case keyIPHash:
			out.ipHash, _ = v.(string)
		}
		// Unknown reserved keys are dropped rather than leaked into
		// user data.
	}

	return out, nil
}

// parseInstant tolerates malformed timestamps by returning the zero
// instant, which the engine treats as "default to now".
func parseInstant(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
