package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mednet-labs/studyguard"
)

// ErrRedisUnavailable wraps any Redis transport failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Directory resolves user and org records from the application
// database. Returned user records need not carry a token list; the
// Redis adapter owns that field.
type Directory interface {
	UserByID(ctx context.Context, id string) (studyguard.UserRecord, error)
	UserByIdentifier(ctx context.Context, identifier string) (studyguard.UserRecord, error)
	OrgByID(ctx context.Context, id string) (studyguard.OrgRecord, error)
}

// casSaveScript performs the compare-and-swap in one atomic step:
// the stored list must still serialize to ARGV[1] (or ARGV[1] is the
// unconditional sentinel) for ARGV[2] to be written.
const casSaveScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  current = "[]"
end
if ARGV[1] ~= "*" and current ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2])
return 1
`

var casSaveLua = redis.NewScript(casSaveScript)

// Redis is a [studyguard.Store] that keeps refresh-token lists in Redis
// under an atomic compare-and-swap script, with directory lookups
// delegated to the application database.
type Redis struct {
	client    redis.UniversalClient
	prefix    string
	directory Directory
}

// NewRedis creates a Redis-backed store. prefix namespaces the token
// list keys; "sg" is a reasonable default.
func NewRedis(client redis.UniversalClient, prefix string, directory Directory) *Redis {
	if prefix == "" {
		prefix = "sg"
	}
	return &Redis{client: client, prefix: prefix, directory: directory}
}

func (r *Redis) key(userID string) string {
	return r.prefix + ":rt:" + userID
}

func (r *Redis) GetUserByID(ctx context.Context, id string) (studyguard.UserRecord, error) {
	user, err := r.directory.UserByID(ctx, id)
	if err != nil {
		return studyguard.UserRecord{}, err
	}
	user.RefreshTokens, err = r.loadTokens(ctx, user.ID)
	if err != nil {
		return studyguard.UserRecord{}, err
	}
	return user, nil
}

func (r *Redis) GetUserByIdentifier(ctx context.Context, identifier string) (studyguard.UserRecord, error) {
	user, err := r.directory.UserByIdentifier(ctx, identifier)
	if err != nil {
		return studyguard.UserRecord{}, err
	}
	user.RefreshTokens, err = r.loadTokens(ctx, user.ID)
	if err != nil {
		return studyguard.UserRecord{}, err
	}
	return user, nil
}

func (r *Redis) GetOrgByID(ctx context.Context, id string) (studyguard.OrgRecord, error) {
	return r.directory.OrgByID(ctx, id)
}

// SaveRefreshTokens writes the serialized list through the Lua
// compare-and-swap. Lists round-trip through JSON on both read and
// write, so byte equality of the serialized forms is exactly list
// equality.
func (r *Redis) SaveRefreshTokens(ctx context.Context, userID string, expected, next []studyguard.RefreshTokenRecord) error {
	expectedBlob := "*"
	if expected != nil {
		data, err := marshalTokens(expected)
		if err != nil {
			return err
		}
		expectedBlob = data
	}
	nextBlob, err := marshalTokens(next)
	if err != nil {
		return err
	}

	result, err := casSaveLua.Run(ctx, r.client, []string{r.key(userID)}, expectedBlob, nextBlob).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if result == 0 {
		return studyguard.ErrConcurrentModification
	}
	return nil
}

func (r *Redis) loadTokens(ctx context.Context, userID string) ([]studyguard.RefreshTokenRecord, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []studyguard.RefreshTokenRecord{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var records []studyguard.RefreshTokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corrupt token list for user %s: %w", userID, err)
	}
	if records == nil {
		records = []studyguard.RefreshTokenRecord{}
	}
	return records, nil
}

func marshalTokens(records []studyguard.RefreshTokenRecord) (string, error) {
	if records == nil {
		records = []studyguard.RefreshTokenRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
