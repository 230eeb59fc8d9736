package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/finmanager-golang/internal/models"
)

// SupabaseProvider talks to a Supabase project's GoTrue REST API.
type SupabaseProvider struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

// NewSupabaseProvider returns a provider for the project at baseURL.
func NewSupabaseProvider(baseURL, anonKey string, httpClient *http.Client) *SupabaseProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SupabaseProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type goTrueUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Aud       string    `json:"aud"`
	CreatedAt time.Time `json:"created_at"`
}

func (u goTrueUser) user() models.User {
	return models.User{ID: u.ID, Email: u.Email, Aud: u.Aud, CreatedAt: u.CreatedAt}
}

type goTrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *goTrueUser `json:"user"`
}

func (s goTrueSession) session(now time.Time) models.Session {
	out := models.Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	case s.ExpiresIn > 0:
		out.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second).UTC()
	}
	if s.User != nil {
		out.User = s.User.user()
	}
	return out
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *SupabaseProvider) SignInWithPassword(ctx context.Context, email, password string) (models.Session, error) {
	var res goTrueSession
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{email, password}, &res); err != nil {
		return models.Session{}, err
	}
	return res.session(p.now()), nil
}

func (p *SupabaseProvider) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	var raw json.RawMessage
	if err := p.do(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{email, password}, &raw); err != nil {
		return models.Session{}, err
	}

	// With email confirmation enabled GoTrue returns the bare user.
	var res goTrueSession
	if err := json.Unmarshal(raw, &res); err != nil {
		return models.Session{}, fmt.Errorf("decode signup response: %w", err)
	}
	if res.AccessToken != "" {
		return res.session(p.now()), nil
	}
	var user goTrueUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.Session{}, fmt.Errorf("decode signup user: %w", err)
	}
	return models.Session{User: user.user()}, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, session models.Session) error {
	return p.do(ctx, http.MethodPost, "/auth/v1/logout", session.AccessToken, nil, nil)
}

func (p *SupabaseProvider) GetUser(ctx context.Context, session models.Session) (models.User, error) {
	var user goTrueUser
	if err := p.do(ctx, http.MethodGet, "/auth/v1/user", session.AccessToken, nil, &user); err != nil {
		return models.User{}, err
	}
	return user.user(), nil
}

func (p *SupabaseProvider) UpdateUser(ctx context.Context, session models.Session, password string) error {
	body := struct {
		Password string `json:"password"`
	}{password}
	return p.do(ctx, http.MethodPut, "/auth/v1/user", session.AccessToken, body, nil)
}

func (p *SupabaseProvider) Demo() bool { return false }

// do sends one GoTrue request. Non-2xx responses become a *ProviderError
// holding the service's own message.
func (p *SupabaseProvider) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode supabase response: %w", err)
	}
	return nil
}

func providerError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	// GoTrue has used several error shapes across versions.
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	_ = json.Unmarshal(data, &e)

	msg := e.Msg
	for _, candidate := range []string{e.Message, e.ErrorDescription, e.Error, strings.TrimSpace(string(data))} {
		if msg != "" {
			break
		}
		msg = candidate
	}
	if msg == "" {
		msg = resp.Status
	}
	return &ProviderError{Status: resp.StatusCode, Message: msg}
}
