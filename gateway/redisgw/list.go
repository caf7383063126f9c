package redisgw

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/relata/relation"
)

// List is a dataset backed by a Redis list of JSON-encoded tuples. The
// list preserves insertion order. JSON decoding surfaces numbers as
// float64; declare read kinds on the schema to decode them further.
type List struct {
	client redis.Cmdable
	key    string
}

// Key returns the full Redis key backing the list.
func (l *List) Key() string {
	return l.key
}

// Each reads the whole list once and yields every tuple in list order.
func (l *List) Each(fn func(relation.Tuple) error) error {
	values, err := l.client.LRange(context.Background(), l.key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("lrange %s: %w", l.key, err)
	}

	for _, raw := range values {
		var tuple relation.Tuple
		if err := json.Unmarshal([]byte(raw), &tuple); err != nil {
			return fmt.Errorf("decode tuple in %s: %w", l.key, err)
		}
		if err := fn(tuple); err != nil {
			return err
		}
	}
	return nil
}

// Insert appends a tuple to the tail of the list.
func (l *List) Insert(t relation.Tuple) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tuple for %s: %w", l.key, err)
	}
	return l.client.RPush(context.Background(), l.key, data).Err()
}

// Len returns the list length, or 0 when the key is missing.
func (l *List) Len() int {
	n, err := l.client.LLen(context.Background(), l.key).Result()
	if err != nil {
		return 0
	}
	return int(n)
}
