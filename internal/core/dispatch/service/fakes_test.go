package dispatchapp

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	queueEntity "chakavak/internal/core/queue"
	settingsEntity "chakavak/internal/core/settings"
	userEntity "chakavak/internal/core/user"
	twitterPort "chakavak/internal/ports/twitter"
)

// fakeQueueRepo یک QueueRepository در حافظه با همان رفتار claim شرطی
type fakeQueueRepo struct {
	mu     sync.Mutex
	tweets map[uuid.UUID]*queueEntity.QueuedTweet
	dueErr error
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{tweets: map[uuid.UUID]*queueEntity.QueuedTweet{}}
}

func (r *fakeQueueRepo) add(t *queueEntity.QueuedTweet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tweets[t.ID] = &cp
}

func (r *fakeQueueRepo) get(id uuid.UUID) queueEntity.QueuedTweet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.tweets[id]
}

func (r *fakeQueueRepo) Create(ctx context.Context, tweet *queueEntity.QueuedTweet) (*queueEntity.QueuedTweet, error) {
	r.add(tweet)
	return tweet, nil
}

func (r *fakeQueueRepo) FindByID(ctx context.Context, id uuid.UUID) (*queueEntity.QueuedTweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *t
	return &cp, nil
}

func (r *fakeQueueRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queueEntity.QueuedTweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*queueEntity.QueuedTweet
	for _, t := range r.tweets {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeQueueRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return nil
}

func (r *fakeQueueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tweets, id)
	return nil
}

func (r *fakeQueueRepo) LatestScheduledAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	return nil, nil
}

func (r *fakeQueueRepo) DueTweets(ctx context.Context, limit int) ([]*queueEntity.QueuedTweet, error) {
	if r.dueErr != nil {
		return nil, r.dueErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var due []*queueEntity.QueuedTweet
	for _, t := range r.tweets {
		if t.Status == queueEntity.StatusPending && !t.ScheduledAt.After(now) {
			cp := *t
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledAt.Equal(due[j].ScheduledAt) {
			return due[i].ScheduledAt.Before(due[j].ScheduledAt)
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *fakeQueueRepo) ClaimForPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok || t.Status != queueEntity.StatusPending {
		return false, nil
	}
	t.Status = queueEntity.StatusProcessing
	return true, nil
}

func (r *fakeQueueRepo) MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tweets[id]
	t.Status = queueEntity.StatusPosted
	at := postedAt
	t.PostedAt = &at
	t.LastError = ""
	return nil
}

func (r *fakeQueueRepo) MarkFailed(ctx context.Context, id uuid.UUID, errText string, retryCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tweets[id]
	t.Status = queueEntity.StatusFailed
	t.LastError = errText
	t.RetryCount = retryCount
	return nil
}

func (r *fakeQueueRepo) Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, retryCount int, errText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tweets[id]
	t.Status = queueEntity.StatusPending
	t.ScheduledAt = scheduledAt
	t.RetryCount = retryCount
	t.LastError = errText
	return nil
}

// fakeSettingsRepo تنظیمات در حافظه
type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[uuid.UUID]*settingsEntity.PostingSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: map[uuid.UUID]*settingsEntity.PostingSettings{}}
}

func (r *fakeSettingsRepo) put(s *settingsEntity.PostingSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[s.UserID] = s
}

func (r *fakeSettingsRepo) get(userID uuid.UUID) *settingsEntity.PostingSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings[userID]
}

func (r *fakeSettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*settingsEntity.PostingSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*settingsEntity.PostingSettings, error) {
	return r.settings[userID], nil
}

func (r *fakeSettingsRepo) RecordPost(ctx context.Context, userID uuid.UUID, postedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[userID]
	if !ok {
		return errors.New("no settings")
	}
	s.PostsToday++
	at := postedAt
	s.LastPostAt = &at
	return nil
}

// fakeWindow پنجره‌ی rolling در حافظه
type fakeWindow struct {
	mu    sync.Mutex
	posts map[string][]time.Time
	err   error
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{posts: map[string][]time.Time{}}
}

func (w *fakeWindow) Add(ctx context.Context, userID string, at time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.posts[userID] = append(w.posts[userID], at)
	return nil
}

func (w *fakeWindow) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, at := range w.posts[userID] {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

// fakeUserRepo کاربران در حافظه
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*userEntity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*userEntity.User{}}
}

func (r *fakeUserRepo) put(u *userEntity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID.String()] = u
}

func (r *fakeUserRepo) Create(u *userEntity.User) (*userEntity.User, error) {
	r.put(u)
	return u, nil
}

func (r *fakeUserRepo) FindByID(id string) (*userEntity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*userEntity.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeUserRepo) FindByEmailOrUsername(email, username string) (*userEntity.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeUserRepo) GetCredentials(userID string) (*userEntity.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &userEntity.Credentials{
		AccessToken:  u.TwitterAccessToken,
		RefreshToken: u.TwitterRefreshToken,
		ExpiresAt:    u.TokenExpiresAt,
	}, nil
}

func (r *fakeUserRepo) UpdateTwitterTokens(userID string, creds *userEntity.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errors.New("not found")
	}
	u.TwitterAccessToken = creds.AccessToken
	u.TwitterRefreshToken = creds.RefreshToken
	u.TokenExpiresAt = creds.ExpiresAt
	return nil
}

// fakeTwitter کلاینت توییتر قابل برنامه‌ریزی برای تست
type fakeTwitter struct {
	mu           sync.Mutex
	postCalls    int
	postTokens   []string
	postMediaIDs []string
	postErrs     []error // به ترتیب مصرف می‌شوند؛ بعد از اتمام، موفق
	uploadCalls  int
	uploadErr    error
	uploadID     string
	refreshCalls int
	refreshErr   error
	refreshed    *twitterPort.RefreshedToken
}

func (f *fakeTwitter) PostTweet(ctx context.Context, accessToken, content, mediaID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCalls++
	f.postTokens = append(f.postTokens, accessToken)
	f.postMediaIDs = append(f.postMediaIDs, mediaID)
	if len(f.postErrs) > 0 {
		err := f.postErrs[0]
		f.postErrs = f.postErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "remote-123", nil
}

func (f *fakeTwitter) UploadMedia(ctx context.Context, accessToken, mediaURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if f.uploadID != "" {
		return f.uploadID, nil
	}
	return "media-1", nil
}

func (f *fakeTwitter) RefreshToken(ctx context.Context, refreshToken string) (*twitterPort.RefreshedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshed != nil {
		return f.refreshed, nil
	}
	expires := time.Now().UTC().Add(2 * time.Hour)
	return &twitterPort.RefreshedToken{
		AccessToken:  "fresh-access",
		RefreshToken: "fresh-refresh",
		ExpiresAt:    expires,
	}, nil
}
