package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	dismissedPromptsKey      = "dismissedPrompts"
	lastPromptDismissTimeKey = "lastPromptDismissTime"
)

// PromptState is the persisted dismissal record: the dismissed prompt types
// and, per type, the last dismissal time in epoch milliseconds.
type PromptState struct {
	DismissedPrompts      []string         `json:"dismissedPrompts"`
	LastPromptDismissTime map[string]int64 `json:"lastPromptDismissTime"`
}

func emptyPromptState() PromptState {
	return PromptState{DismissedPrompts: []string{}, LastPromptDismissTime: map[string]int64{}}
}

// PromptStore is client-local durable storage for one owner's dismissals.
type PromptStore interface {
	Load(ctx context.Context, owner string) (PromptState, error)
	Save(ctx context.Context, owner string, state PromptState) error
}

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FilePromptStore keeps one JSON document per owner holding the two entries.
type FilePromptStore struct {
	dir string
}

func NewFilePromptStore(dir string) *FilePromptStore {
	return &FilePromptStore{dir: dir}
}

func (s *FilePromptStore) path(owner string) (string, error) {
	if !ownerPattern.MatchString(owner) {
		return "", fmt.Errorf("invalid prompt owner %q", owner)
	}
	return filepath.Join(s.dir, owner+".json"), nil
}

func (s *FilePromptStore) Load(_ context.Context, owner string) (PromptState, error) {
	path, err := s.path(owner)
	if err != nil {
		return PromptState{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyPromptState(), nil
	}
	if err != nil {
		return PromptState{}, fmt.Errorf("failed to read prompt state: %w", err)
	}

	state := emptyPromptState()
	if err := json.Unmarshal(data, &state); err != nil {
		return PromptState{}, fmt.Errorf("failed to decode prompt state: %w", err)
	}
	if state.DismissedPrompts == nil {
		state.DismissedPrompts = []string{}
	}
	if state.LastPromptDismissTime == nil {
		state.LastPromptDismissTime = map[string]int64{}
	}
	return state, nil
}

func (s *FilePromptStore) Save(_ context.Context, owner string, state PromptState) error {
	path, err := s.path(owner)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompt dir: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt state: %w", err)
	}
	return os.Rename(tmp, path)
}

// RedisPromptStore keeps the two entries as separate keys per owner.
type RedisPromptStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisPromptStore(client *redis.Client, ttl time.Duration) *RedisPromptStore {
	return &RedisPromptStore{redis: client, ttl: ttl}
}

func promptKey(owner, entry string) string {
	return fmt.Sprintf("prompts:%s:%s", owner, entry)
}

func (s *RedisPromptStore) Load(ctx context.Context, owner string) (PromptState, error) {
	state := emptyPromptState()

	list, err := s.redis.Get(ctx, promptKey(owner, dismissedPromptsKey)).Bytes()
	if err != nil && err != redis.Nil {
		return PromptState{}, err
	}
	if err == nil {
		if err := json.Unmarshal(list, &state.DismissedPrompts); err != nil {
			return PromptState{}, fmt.Errorf("failed to decode dismissed prompts: %w", err)
		}
	}

	times, err := s.redis.Get(ctx, promptKey(owner, lastPromptDismissTimeKey)).Bytes()
	if err != nil && err != redis.Nil {
		return PromptState{}, err
	}
	if err == nil {
		if err := json.Unmarshal(times, &state.LastPromptDismissTime); err != nil {
			return PromptState{}, fmt.Errorf("failed to decode dismiss times: %w", err)
		}
	}

	return state, nil
}

func (s *RedisPromptStore) Save(ctx context.Context, owner string, state PromptState) error {
	list, err := json.Marshal(state.DismissedPrompts)
	if err != nil {
		return err
	}
	times, err := json.Marshal(state.LastPromptDismissTime)
	if err != nil {
		return err
	}

	pipe := s.redis.Pipeline()
	pipe.Set(ctx, promptKey(owner, dismissedPromptsKey), list, s.ttl)
	pipe.Set(ctx, promptKey(owner, lastPromptDismissTimeKey), times, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}
