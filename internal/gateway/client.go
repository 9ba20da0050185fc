package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sproutfin/sprout/internal/profile"
)

// Record is the profile row shape exchanged with the identity provider.
// The provider never sees a plaintext password; only the bcrypt hash travels.
type Record struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name,omitempty"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	Nationality  string `json:"nationality,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Client is a thin request/response wrapper around the remote identity
// service. Every operation is a single attempt with a bounded timeout; retry
// policy belongs to the caller.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a gateway client. The anon key is the provider's
// published low-privilege client key, sent on every request.
func NewClient(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// LookupProfileByEmail fetches at most one profile row matching the email.
// A missing row is ErrNotFound; a failed query is a TransportError. The two
// are never conflated.
func (c *Client) LookupProfileByEmail(ctx context.Context, email string) (Record, error) {
	email = profile.NormalizeEmail(email)
	endpoint := fmt.Sprintf("%s/rest/v1/profiles?select=*&email=eq.%s&limit=1", c.baseURL, url.QueryEscape(email))

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return Record{}, &TransportError{Op: "lookup profile", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, &TransportError{Op: "lookup profile", Status: resp.StatusCode}
	}

	var rows []Record
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return Record{}, &TransportError{Op: "lookup profile", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(rows) == 0 {
		return Record{}, ErrNotFound
	}
	return rows[0], nil
}

// RequestSignInCode asks the provider to email a one-time passcode. Single
// attempt; a failure is surfaced and the flow must not advance.
func (c *Client) RequestSignInCode(ctx context.Context, email string) error {
	email = profile.NormalizeEmail(email)
	body := map[string]any{"email": email, "create_user": true}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/v1/otp", body, nil)
	if err != nil {
		return &TransportError{Op: "request sign-in code", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("sign-in code dispatched", "email", email)
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("request sign-in code rejected: %s", upstreamMessage(resp.Body))
	}
	return &TransportError{Op: "request sign-in code", Status: resp.StatusCode}
}

// VerifyCode exchanges the emailed passcode for a verified address. Any 4xx
// is reported as ErrInvalidCode so the OTP screen shows the field error.
func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	email = profile.NormalizeEmail(email)
	body := map[string]any{"type": "email", "email": email, "token": code}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/v1/verify", body, nil)
	if err != nil {
		return &TransportError{Op: "verify code", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", ErrInvalidCode, upstreamMessage(resp.Body))
	default:
		return &TransportError{Op: "verify code", Status: resp.StatusCode}
	}
}

// CreateProfile submits the personal-details record. The password is bcrypt
// hashed here, at the last moment before transmission.
func (c *Client) CreateProfile(ctx context.Context, p profile.Profile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record := Record{
		Email:        profile.NormalizeEmail(p.Email),
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		DateOfBirth:  p.DateOfBirth,
		Nationality:  p.Nationality,
		PasswordHash: string(hash),
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/rest/v1/profiles", record, map[string]string{"Prefer": "return=minimal"})
	if err != nil {
		return &TransportError{Op: "create profile", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.logger.Info("profile created", "email", record.Email)
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrDuplicateEmail
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("create profile rejected: %s", upstreamMessage(resp.Body))
	default:
		return &TransportError{Op: "create profile", Status: resp.StatusCode}
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, headers map[string]string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.http.Do(req)
}

// upstreamMessage extracts the provider's error text, tolerating both
// {"msg": ...} and {"message": ...} payloads.
func upstreamMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Msg != "" {
			return payload.Msg
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(data)
}
