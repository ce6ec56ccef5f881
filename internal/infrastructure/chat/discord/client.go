package discord

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/haneulbot/scrim-queue/internal/platform/logging"
	"github.com/haneulbot/scrim-queue/internal/platform/resilience"
	"github.com/haneulbot/scrim-queue/internal/usecase"
)

const (
	defaultBaseURL = "https://discord.com/api/v10"

	// JoinButtonCustomID identifies the queue-join button on recruit
	// messages; interaction callbacks carry it back.
	JoinButtonCustomID = "scrim-queue-join"

	// codeCannotDMUser is Discord's error code for members whose privacy
	// settings refuse direct messages.
	codeCannotDMUser = 50007
)

var errDiscordTransient = crerr.New("discord transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	GuildID        int64
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Discord REST API. It implements usecase.Notifier and
// usecase.Membership.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	guildID        int64
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		guildID:        cfg.GuildID,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type guildMemberEnvelope struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// IsLiveMember reports whether the id still belongs to the configured
// guild. A 404 is a definitive "left", not an error.
func (c *Client) IsLiveMember(ctx context.Context, memberID int64) (bool, error) {
	path := fmt.Sprintf("/guilds/%d/members/%d", c.guildID, memberID)

	var envelope guildMemberEnvelope
	err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope)
	if err != nil {
		var apiErr *apiError
		if stderrors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("get guild member=%d: %w", memberID, err)
	}

	return true, nil
}

type dmChannelEnvelope struct {
	ID string `json:"id"`
}

func (c *Client) SendDirect(ctx context.Context, memberID int64, msg usecase.Message) error {
	openPayload := map[string]any{
		"recipient_id": strconv.FormatInt(memberID, 10),
	}
	var channel dmChannelEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/users/@me/channels", openPayload, &channel); err != nil {
		return fmt.Errorf("open dm channel for member=%d: %w", memberID, err)
	}

	payload := messagePayload{Embeds: []embed{{Title: msg.Title, Description: msg.Body}}}
	var posted messageEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/channels/"+channel.ID+"/messages", payload, &posted); err != nil {
		if isDeliveryBlocked(err) {
			return fmt.Errorf("%w: member=%d", usecase.ErrDeliveryBlocked, memberID)
		}
		return fmt.Errorf("send dm to member=%d: %w", memberID, err)
	}

	return nil
}

func (c *Client) Announce(ctx context.Context, channelID int64, msg usecase.Message) (usecase.MessageRef, error) {
	payload := messagePayload{
		Embeds:     []embed{{Title: msg.Title, Description: msg.Body}},
		Components: joinPromptComponents(false),
	}

	var posted messageEnvelope
	path := fmt.Sprintf("/channels/%d/messages", channelID)
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &posted); err != nil {
		return usecase.MessageRef{}, fmt.Errorf("announce to channel=%d: %w", channelID, err)
	}

	messageID, err := strconv.ParseInt(posted.ID, 10, 64)
	if err != nil {
		return usecase.MessageRef{}, fmt.Errorf("parse posted message id %q: %w", posted.ID, err)
	}

	return usecase.MessageRef{ChannelID: channelID, MessageID: messageID}, nil
}

// DisableJoinPrompt greys out the join button on a previously announced
// message so late clicks stop arriving.
func (c *Client) DisableJoinPrompt(ctx context.Context, ref usecase.MessageRef) error {
	payload := map[string]any{
		"components": joinPromptComponents(true),
	}

	path := fmt.Sprintf("/channels/%d/messages/%d", ref.ChannelID, ref.MessageID)
	var updated messageEnvelope
	if err := c.doJSON(ctx, http.MethodPatch, path, payload, &updated); err != nil {
		var apiErr *apiError
		if stderrors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return fmt.Errorf("%w: message %d/%d", usecase.ErrNotFound, ref.ChannelID, ref.MessageID)
		}
		return fmt.Errorf("disable join prompt on %d/%d: %w", ref.ChannelID, ref.MessageID, err)
	}

	return nil
}

type embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type component struct {
	Type     int         `json:"type"`
	Style    int         `json:"style,omitempty"`
	Label    string      `json:"label,omitempty"`
	CustomID string      `json:"custom_id,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
	Children []component `json:"components,omitempty"`
}

type messagePayload struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []embed     `json:"embeds,omitempty"`
	Components []component `json:"components,omitempty"`
}

type messageEnvelope struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

func joinPromptComponents(disabled bool) []component {
	return []component{{
		Type: 1, // action row
		Children: []component{{
			Type:     2, // button
			Style:    1,
			Label:    "Join the queue",
			CustomID: JoinButtonCustomID,
			Disabled: disabled,
		}},
	}}
}

// apiError is a non-2xx Discord response with its decoded error body.
type apiError struct {
	Status  int
	Code    int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("discord api status=%d code=%d message=%s", e.Status, e.Code, e.Message)
}

func isDeliveryBlocked(err error) bool {
	var apiErr *apiError
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusForbidden || apiErr.Code == codeCannotDMUser
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "discord circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: circuit %s", usecase.ErrGatewayUnavailable, c.breaker.State())
		}
	}

	var body io.Reader
	if payload != nil {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
			return crerr.Wrap(err, "marshal discord payload")
		}
		body = bytes.NewReader(buf.B)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return crerr.Wrap(err, "create discord request")
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: %s %s: %v", errDiscordTransient, method, path, err)
		c.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		callErr := fmt.Errorf("%w: read discord response: %v", errDiscordTransient, err)
		c.recordCircuitResult(callErr)
		return callErr
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &apiError{Status: resp.StatusCode}
		var decoded struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if unmarshalErr := sonic.Unmarshal(raw, &decoded); unmarshalErr == nil {
			apiErr.Code = decoded.Code
			apiErr.Message = decoded.Message
		}

		var callErr error = apiErr
		if isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errDiscordTransient, apiErr)
		}
		c.recordCircuitResult(callErr)
		return callErr
	}
	c.recordCircuitResult(nil)

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode discord response: %w", err)
	}

	return nil
}

// recordCircuitResult feeds the breaker. Only transient failures count;
// 4xx denials are the API working as intended.
func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && stderrors.Is(err, errDiscordTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
