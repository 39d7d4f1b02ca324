// Package redis provides the durable store backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// advanceSeq moves an id counter forward to at least ARGV[1]
var advanceSeq = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local want = tonumber(ARGV[1])
if cur < want then
	redis.call('SET', KEYS[1], want)
end
return 0
`)

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Generic record helpers

func listRecords[T any](ctx context.Context, client *redis.Client, kind string) ([]*T, error) {
	ids, err := client.ZRange(ctx, indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		keys = append(keys, recordKey(kind, id))
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			// Removed between ZRANGE and MGET
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, nil
}

func getRecord[T any](ctx context.Context, client *redis.Client, kind string, id int64, notFound error) (*T, error) {
	data, err := client.Get(ctx, recordKey(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Storage) nextID(ctx context.Context, kind string) (int64, error) {
	return s.client.Incr(ctx, seqKey(kind)).Result()
}

func (s *Storage) writeRecord(ctx context.Context, pipe redis.Pipeliner, kind string, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe.Set(ctx, recordKey(kind, id), data, 0)
	pipe.ZAdd(ctx, indexKey(kind), redis.Z{Score: float64(id), Member: id})
	return nil
}

func (s *Storage) deleteRecord(ctx context.Context, kind string, id int64, notFound error) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, recordKey(kind, id))
		pipe.ZRem(ctx, indexKey(kind), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return notFound
	}
	return nil
}

// updateRecord applies fn to a stored record under WATCH, retrying on conflict
func updateRecord[T any](ctx context.Context, client *redis.Client, kind string, id int64, notFound error, fn func(*T)) error {
	key := recordKey(kind, id)
	const maxRetries = 5

	for range maxRetries {
		err := client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return notFound
				}
				return err
			}

			var item T
			if err := json.Unmarshal(data, &item); err != nil {
				return err
			}
			fn(&item)

			updated, err := json.Marshal(&item)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// Participant operations

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	return listRecords[model.Participant](ctx, s.client, kindParticipant)
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return getRecord[model.Participant](ctx, s.client, kindParticipant, int64(id), model.ErrParticipantNotFound)
}

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	if p.ID == 0 {
		id, err := s.nextID(ctx, kindParticipant)
		if err != nil {
			return err
		}
		p.ID = model.ParticipantID(id)
	} else {
		if err := advanceSeq.Run(ctx, s.client, []string{seqKey(kindParticipant)}, int64(p.ID)).Err(); err != nil {
			return err
		}
	}

	pipe := s.client.TxPipeline()
	if err := s.writeRecord(ctx, pipe, kindParticipant, int64(p.ID), p); err != nil {
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateKnownIdentifiers(ctx context.Context, id model.ParticipantID, appIDs []model.AppID) error {
	return updateRecord(ctx, s.client, kindParticipant, int64(id), model.ErrParticipantNotFound, func(p *model.Participant) {
		p.KnownAppIDs = appIDs
	})
}

// Purchase operations

func (s *Storage) ListPurchases(ctx context.Context, filter storage.PurchaseFilter) ([]*model.Purchase, error) {
	all, err := listRecords[model.Purchase](ctx, s.client, kindPurchase)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Purchase, 0, len(all))
	for _, p := range all {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Storage) InsertPurchase(ctx context.Context, p *model.Purchase) error {
	id, err := s.nextID(ctx, kindPurchase)
	if err != nil {
		return err
	}
	p.ID = model.PurchaseID(id)

	pipe := s.client.TxPipeline()
	if err := s.writeRecord(ctx, pipe, kindPurchase, id, p); err != nil {
		return err
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeletePurchase(ctx context.Context, id model.PurchaseID) error {
	return s.deleteRecord(ctx, kindPurchase, int64(id), model.ErrPurchaseNotFound)
}

func (s *Storage) UpdatePurchasePrice(ctx context.Context, id model.PurchaseID, price float64) error {
	return updateRecord(ctx, s.client, kindPurchase, int64(id), model.ErrPurchaseNotFound, func(p *model.Purchase) {
		p.Price = price
	})
}

// Pending purchase operations

func (s *Storage) ListPendingPurchases(ctx context.Context) ([]*model.PendingPurchase, error) {
	return listRecords[model.PendingPurchase](ctx, s.client, kindPending)
}

func (s *Storage) GetPendingPurchase(ctx context.Context, id model.PendingPurchaseID) (*model.PendingPurchase, error) {
	return getRecord[model.PendingPurchase](ctx, s.client, kindPending, int64(id), model.ErrPendingNotFound)
}

func (s *Storage) InsertPendingPurchases(ctx context.Context, items []*model.PendingPurchase) error {
	if len(items) == 0 {
		return nil
	}

	// Reserve a contiguous block of ids
	last, err := s.client.IncrBy(ctx, seqKey(kindPending), int64(len(items))).Result()
	if err != nil {
		return err
	}
	first := last - int64(len(items)) + 1

	pipe := s.client.TxPipeline()
	for i, item := range items {
		item.ID = model.PendingPurchaseID(first + int64(i))
		if err := s.writeRecord(ctx, pipe, kindPending, int64(item.ID), item); err != nil {
			return err
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeletePendingPurchase(ctx context.Context, id model.PendingPurchaseID) error {
	return s.deleteRecord(ctx, kindPending, int64(id), model.ErrPendingNotFound)
}

// Trophy operations

func (s *Storage) InsertTrophy(ctx context.Context, t *model.Trophy) error {
	slot := trophyPeriodKey(t)

	claimed, err := s.client.SetNX(ctx, slot, "pending", 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateTrophy
	}

	id, err := s.nextID(ctx, kindTrophy)
	if err != nil {
		_ = s.client.Del(ctx, slot).Err()
		return err
	}
	t.ID = model.TrophyID(id)

	pipe := s.client.TxPipeline()
	if err := s.writeRecord(ctx, pipe, kindTrophy, id, t); err != nil {
		_ = s.client.Del(ctx, slot).Err()
		return err
	}
	pipe.Set(ctx, slot, id, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		_ = s.client.Del(ctx, slot).Err()
		return err
	}
	return nil
}

func (s *Storage) ListTrophies(ctx context.Context) ([]*model.Trophy, error) {
	return listRecords[model.Trophy](ctx, s.client, kindTrophy)
}
