package queueapp

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	queueEntity "chakavak/internal/core/queue"
	settingsEntity "chakavak/internal/core/settings"
)

type memQueueRepo struct {
	mu     sync.Mutex
	tweets map[uuid.UUID]*queueEntity.QueuedTweet
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{tweets: map[uuid.UUID]*queueEntity.QueuedTweet{}}
}

func (r *memQueueRepo) Create(ctx context.Context, tweet *queueEntity.QueuedTweet) (*queueEntity.QueuedTweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tweet
	r.tweets[tweet.ID] = &cp
	return tweet, nil
}

func (r *memQueueRepo) FindByID(ctx context.Context, id uuid.UUID) (*queueEntity.QueuedTweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, errors.New("tweet not found")
	}
	cp := *t
	return &cp, nil
}

func (r *memQueueRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queueEntity.QueuedTweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*queueEntity.QueuedTweet
	for _, t := range r.tweets {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *memQueueRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return errors.New("tweet not found")
	}
	if v, ok := fields["content"]; ok {
		t.Content = v.(string)
	}
	if v, ok := fields["media_url"]; ok {
		t.MediaURL = v.(string)
	}
	if v, ok := fields["scheduled_at"]; ok {
		t.ScheduledAt = v.(time.Time)
	}
	return nil
}

func (r *memQueueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tweets[id]; !ok {
		return errors.New("tweet not found")
	}
	delete(r.tweets, id)
	return nil
}

func (r *memQueueRepo) LatestScheduledAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *time.Time
	for _, t := range r.tweets {
		if t.UserID != userID || t.Status != queueEntity.StatusPending {
			continue
		}
		if latest == nil || t.ScheduledAt.After(*latest) {
			at := t.ScheduledAt
			latest = &at
		}
	}
	return latest, nil
}

func (r *memQueueRepo) DueTweets(ctx context.Context, limit int) ([]*queueEntity.QueuedTweet, error) {
	return nil, nil
}

func (r *memQueueRepo) ClaimForPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (r *memQueueRepo) MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error {
	return nil
}

func (r *memQueueRepo) MarkFailed(ctx context.Context, id uuid.UUID, errText string, retryCount int) error {
	return nil
}

func (r *memQueueRepo) Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, retryCount int, errText string) error {
	return nil
}

type memSettingsRepo struct {
	settings map[uuid.UUID]*settingsEntity.PostingSettings
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{settings: map[uuid.UUID]*settingsEntity.PostingSettings{}}
}

func (r *memSettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*settingsEntity.PostingSettings, error) {
	return r.settings[userID], nil
}

func (r *memSettingsRepo) Upsert(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*settingsEntity.PostingSettings, error) {
	return r.settings[userID], nil
}

func (r *memSettingsRepo) RecordPost(ctx context.Context, userID uuid.UUID, postedAt time.Time) error {
	return nil
}

func newQueueTestService() (*QueueService, *memQueueRepo, *memSettingsRepo) {
	repo := newMemQueueRepo()
	settingsRepo := newMemSettingsRepo()
	return NewQueueService(repo, settingsRepo), repo, settingsRepo
}

func TestEnqueue_StoresPendingTweet(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())
	scheduledAt := time.Now().UTC().Add(time.Hour)

	dto, err := svc.Enqueue(context.Background(), userID.String(), "  Hello world  ", "", scheduledAt)
	require.NoError(t, err)

	assert.Equal(t, "Hello world", dto.Content)
	assert.Equal(t, queueEntity.StatusPending, dto.Status)

	stored, err := repo.FindByID(context.Background(), uuid.Must(uuid.FromString(dto.ID)))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", stored.Content)
	assert.Equal(t, 0, stored.RetryCount)
}

func TestEnqueue_ContentValidation(t *testing.T) {
	svc, _, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4()).String()
	scheduledAt := time.Now().UTC().Add(time.Hour)

	_, err := svc.Enqueue(context.Background(), userID, "   ", "", scheduledAt)
	assert.ErrorIs(t, err, ErrEmptyContent)

	// طول بر اساس rune سنجیده می‌شود، نه byte
	exactly280 := strings.Repeat("آ", queueEntity.MaxContentLength)
	_, err = svc.Enqueue(context.Background(), userID, exactly280, "", scheduledAt)
	assert.NoError(t, err)

	tooLong := strings.Repeat("آ", queueEntity.MaxContentLength+1)
	_, err = svc.Enqueue(context.Background(), userID, tooLong, "", scheduledAt)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestEnqueueBulk_ConsecutiveDaysAtDailyTime(t *testing.T) {
	svc, repo, settingsRepo := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())
	settingsRepo.settings[userID] = &settingsEntity.PostingSettings{
		UserID:        userID,
		DailyPostTime: "09:30",
		Timezone:      "UTC",
	}

	count, err := svc.EnqueueBulk(context.Background(), userID.String(), []string{"one", "", "two", "three"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	tweets, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, tweets, 3)

	for i, tw := range tweets {
		assert.Equal(t, 9, tw.ScheduledAt.UTC().Hour())
		assert.Equal(t, 30, tw.ScheduledAt.UTC().Minute())
		if i > 0 {
			gap := tw.ScheduledAt.Sub(tweets[i-1].ScheduledAt)
			assert.Equal(t, 24*time.Hour, gap)
		}
		assert.True(t, tw.ScheduledAt.After(time.Now().UTC()))
	}
}

func TestEnqueueBulk_ContinuesAfterLatestScheduled(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())

	existingAt := time.Now().UTC().AddDate(0, 0, 5)
	existing := &queueEntity.QueuedTweet{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Content:     "already queued",
		ScheduledAt: existingAt,
		Status:      queueEntity.StatusPending,
	}
	_, err := repo.Create(context.Background(), existing)
	require.NoError(t, err)

	count, err := svc.EnqueueBulk(context.Background(), userID.String(), []string{"next"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tweets, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, tweets, 2)

	// توییت جدید بعد از آخرین زمان‌بندی موجود می‌نشیند
	newest := tweets[1]
	assert.True(t, newest.ScheduledAt.After(existingAt))
}

func TestEnqueueBulk_InvalidContentStopsBatch(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())

	tooLong := strings.Repeat("x", queueEntity.MaxContentLength+1)
	count, err := svc.EnqueueBulk(context.Background(), userID.String(), []string{"fine", tooLong, "never reached"})
	assert.ErrorIs(t, err, ErrContentTooLong)
	assert.Equal(t, 1, count)

	tweets, _ := repo.FindByUserID(context.Background(), userID)
	assert.Len(t, tweets, 1)
}

func TestUpdate_OnlyPendingTweets(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())

	posted := &queueEntity.QueuedTweet{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Content:     "gone out",
		ScheduledAt: time.Now().UTC(),
		Status:      queueEntity.StatusPosted,
	}
	_, err := repo.Create(context.Background(), posted)
	require.NoError(t, err)

	newContent := "edited"
	err = svc.Update(context.Background(), userID.String(), posted.ID.String(), &newContent, nil, nil)
	assert.Error(t, err)
}

func TestUpdate_RejectsForeignTweet(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	owner := uuid.Must(uuid.NewV4())
	intruder := uuid.Must(uuid.NewV4())

	tweet := &queueEntity.QueuedTweet{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner,
		Content:     "mine",
		ScheduledAt: time.Now().UTC(),
		Status:      queueEntity.StatusPending,
	}
	_, err := repo.Create(context.Background(), tweet)
	require.NoError(t, err)

	newContent := "hijacked"
	err = svc.Update(context.Background(), intruder.String(), tweet.ID.String(), &newContent, nil, nil)
	assert.Error(t, err)

	stored, _ := repo.FindByID(context.Background(), tweet.ID)
	assert.Equal(t, "mine", stored.Content)
}

func TestDelete_RemovesOwnTweet(t *testing.T) {
	svc, repo, _ := newQueueTestService()
	userID := uuid.Must(uuid.NewV4())

	tweet := &queueEntity.QueuedTweet{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Content:     "to delete",
		ScheduledAt: time.Now().UTC(),
		Status:      queueEntity.StatusPending,
	}
	_, err := repo.Create(context.Background(), tweet)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), userID.String(), tweet.ID.String()))

	_, err = repo.FindByID(context.Background(), tweet.ID)
	assert.Error(t, err)
}
