package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

type idempotencyRecord struct {
	requestHash string
	response    json.RawMessage
	expires     time.Time
}

// IdempotencyStore remembers the response to a keyed request so a retried
// save replays it instead of creating a second period.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]idempotencyRecord
	now     func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		records: map[string]idempotencyRecord{},
		now:     time.Now,
	}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func idempotencyKey(userID, endpoint, key string) string {
	return userID + "\x00" + endpoint + "\x00" + key
}

func (s *IdempotencyStore) Check(userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[idempotencyKey(userID, endpoint, key)]
	if !ok || s.now().After(record.expires) {
		return nil, false, nil
	}
	if record.requestHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return record.response, true, nil
}

func (s *IdempotencyStore) Save(userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	id := idempotencyKey(userID, endpoint, key)
	if existing, ok := s.records[id]; ok && now.Before(existing.expires) && existing.requestHash != requestHash {
		return ErrIdempotencyConflict
	}
	for k, record := range s.records {
		if now.After(record.expires) {
			delete(s.records, k)
		}
	}
	s.records[id] = idempotencyRecord{requestHash: requestHash, response: response, expires: now.Add(s.ttl)}
	return nil
}
