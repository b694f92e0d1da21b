package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"emoji-guess-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	bankKey          = "questions:bank"
	defaultDrawCount = 10
)

// QuestionLoader fetches the full question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the serialized question bank in Redis and falls
// back to the loader on cache miss; draws are filtered and shuffled locally.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, criteria domain.QuestionCriteria) ([]domain.Question, error) {
	bank, err := r.loadBank(ctx)
	if err != nil {
		return nil, err
	}
	return r.draw(bank, criteria), nil
}

func (r *QuestionRepository) loadBank(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := r.cachedBank(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cachedBank(ctx); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(bank)
		if err != nil {
			return nil, fmt.Errorf("marshal question bank: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, bankKey, data, r.ttlWithJitter()).Err()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cachedBank(ctx context.Context) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, bankKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var bank []domain.Question
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, false
	}
	return bank, true
}

func (r *QuestionRepository) draw(bank []domain.Question, criteria domain.QuestionCriteria) []domain.Question {
	difficulty := criteria.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyAll
	}

	matched := make([]domain.Question, 0, len(bank))
	for _, q := range bank {
		if q.Matches(criteria.Sources, difficulty) {
			matched = append(matched, q)
		}
	}

	r.rndMu.Lock()
	r.rnd.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})
	r.rndMu.Unlock()

	count := criteria.Count
	if count <= 0 {
		count = defaultDrawCount
	}
	if count < len(matched) {
		matched = matched[:count]
	}
	return matched
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
