package twitter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	twitterPort "chakavak/internal/ports/twitter"
)

// ClientHTTP پیاده‌سازی پورت توییتر روی REST API نسخه ۲
type ClientHTTP struct {
	apiBaseURL    string
	uploadBaseURL string
	clientID      string
	clientSecret  string
	http          *http.Client
}

func NewClientHTTP() (*ClientHTTP, error) {
	clientID := strings.TrimSpace(os.Getenv("TWITTER_CLIENT_ID"))
	clientSecret := strings.TrimSpace(os.Getenv("TWITTER_CLIENT_SECRET"))
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("twitter client credentials are empty")
	}

	apiBaseURL := strings.TrimSpace(os.Getenv("TWITTER_API_BASE_URL"))
	if apiBaseURL == "" {
		apiBaseURL = "https://api.twitter.com"
	}
	uploadBaseURL := strings.TrimSpace(os.Getenv("TWITTER_UPLOAD_BASE_URL"))
	if uploadBaseURL == "" {
		uploadBaseURL = "https://upload.twitter.com"
	}

	return &ClientHTTP{
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
		uploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
		clientID:      clientID,
		clientSecret:  clientSecret,
		http:          &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PostTweet ارسال توییت با متن و رسانه‌ی اختیاری
func (c *ClientHTTP) PostTweet(ctx context.Context, accessToken, content, mediaID string) (string, error) {
	payload := tweetRequest{Text: content}
	if mediaID != "" {
		payload.Media = &tweetMedia{MediaIDs: []string{mediaID}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed tweetResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	return parsed.Data.ID, nil
}

type mediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

// UploadMedia دانلود فایل از mediaURL و آپلود به endpoint رسانه‌ی توییتر
func (c *ClientHTTP) UploadMedia(ctx context.Context, accessToken, mediaURL string) (string, error) {
	mediaReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", err
	}
	mediaResp, err := c.http.Do(mediaReq)
	if err != nil {
		return "", &twitterPort.APIError{Kind: twitterPort.ErrKindOther, Message: fmt.Sprintf("fetch media: %v", err)}
	}
	defer mediaResp.Body.Close()

	if mediaResp.StatusCode < 200 || mediaResp.StatusCode >= 300 {
		return "", &twitterPort.APIError{
			Kind:       twitterPort.ErrKindOther,
			StatusCode: mediaResp.StatusCode,
			Message:    fmt.Sprintf("fetch media: unexpected status %d", mediaResp.StatusCode),
		}
	}

	data, err := io.ReadAll(mediaResp.Body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("media_data", base64.StdEncoding.EncodeToString(data)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadBaseURL+"/1.1/media/upload.json", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return "", err
	}

	var parsed mediaUploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	return parsed.MediaIDString, nil
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshToken تعویض refresh token با توکن دسترسی جدید
func (c *ClientHTTP) RefreshToken(ctx context.Context, refreshToken string) (*twitterPort.RefreshedToken, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/2/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed refreshResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	if parsed.RefreshToken == "" {
		// توییتر گاهی refresh token جدید نمی‌فرستد
		parsed.RefreshToken = refreshToken
	}

	return &twitterPort.RefreshedToken{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}, nil
}

// do اجرای درخواست و دسته‌بندی خطاها بر اساس status code
func (c *ClientHTTP) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &twitterPort.APIError{Kind: twitterPort.ErrKindOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	kind := twitterPort.ErrKindOther
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		kind = twitterPort.ErrKindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = twitterPort.ErrKindAuthExpired
	}

	return nil, &twitterPort.APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("twitter api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}
