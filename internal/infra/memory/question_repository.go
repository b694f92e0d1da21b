package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"emoji-guess-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// defaultDrawCount is used when the criteria leave the draw size unset.
const defaultDrawCount = 10

// QuestionLoader fetches the full question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the question bank with a TTL to avoid repeated
// backing-store hits, then filters and shuffles per draw.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu        sync.RWMutex
	bank      []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
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
	now := r.clock()

	r.mu.RLock()
	if r.bank != nil && r.expiresAt.After(now) {
		bank := r.bank
		r.mu.RUnlock()
		return bank, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.bank != nil && r.expiresAt.After(now) {
			bank := r.bank
			r.mu.RUnlock()
			return bank, nil
		}
		r.mu.RUnlock()

		bank, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// draw filters the bank by the criteria, shuffles uniformly (Fisher-Yates),
// and takes the requested count.
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
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed bank (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
