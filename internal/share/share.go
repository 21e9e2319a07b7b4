// Package share issues short share links and redeems them into attributed
// redirects with per-day click deduplication.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/pinfall/internal/apperr"
	"github.com/starford/pinfall/internal/checksum"
)

const (
	DefaultCampaign = "share"
	DefaultChannel  = "share_sheet"
	DefaultLinkTTL  = 90 * 24 * time.Hour
	DefaultSeenTTL  = 24 * time.Hour

	MaxCampaignLen  = 64
	MaxContentIDLen = 128
	TokenLength     = 10

	ClickEventName = "share_click"
)

// DefaultAllowedHosts are the redirect destinations accepted when none are
// configured.
var DefaultAllowedHosts = []string{"events.gobwlng.uk", "localhost"}

// ErrStatsUnsupported is returned by Stats when the analytics sink cannot be
// queried.
var ErrStatsUnsupported = errors.New("click statistics not supported by analytics backend")

// Link is a stored share link.
type Link struct {
	URL       string  `json:"url"`
	Campaign  string  `json:"campaign"`
	ContentID *string `json:"contentId"`
	SharerID  *string `json:"sharerId"`
	CreatedAt int64   `json:"createdAt"` // unix ms
	Revoked   bool    `json:"revoked,omitempty"`
}

// Store is a string key-value store with per-key expiry.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get reports found=false for missing or expired keys.
	Get(ctx context.Context, key string) (value string, found bool, err error)
}

// ClickEvent is one redeemed share link.
type ClickEvent struct {
	Name      string    `json:"event"`
	Token     string    `json:"token"`
	Channel   string    `json:"channel"`
	Campaign  string    `json:"campaign"`
	ContentID string    `json:"contentId"`
	Unique    bool      `json:"unique"`
	Timestamp time.Time `json:"timestamp"`
}

// Analytics receives click events.
type Analytics interface {
	Write(ctx context.Context, e ClickEvent) error
}

// ClickStats are the recorded clicks of one token.
type ClickStats struct {
	Token  string `json:"token"`
	Total  int    `json:"total"`
	Unique int    `json:"unique"`
}

// StatsReader is implemented by analytics sinks that can be queried.
type StatsReader interface {
	Clicks(ctx context.Context, token string) (ClickStats, error)
}

// CreateRequest is the input of Create.
type CreateRequest struct {
	URL         string `json:"url"`
	Campaign    string `json:"campaign,omitempty"`
	ContentID   string `json:"contentId,omitempty"`
	ChannelHint string `json:"channelHint,omitempty"`
}

// CreateResponse is the result of Create.
type CreateResponse struct {
	Token    string `json:"token"`
	ShareURL string `json:"shareUrl"`
}

// RedeemRequest is the input of Redeem.
type RedeemRequest struct {
	Token     string
	Channel   string
	IP        string
	UserAgent string
}

// Redirect is the result of Redeem.
type Redirect struct {
	Location string
	Unique   bool
}

// Service creates and redeems share links.
type Service struct {
	links        Store
	seen         Store
	analytics    Analytics
	allowedHosts map[string]struct{}
	baseURL      string
	linkTTL      time.Duration
	seenTTL      time.Duration
	now          func() time.Time
	newToken     func() string
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSeenStore enables click deduplication.
func WithSeenStore(s Store) Option {
	return func(svc *Service) { svc.seen = s }
}

// WithAnalytics sets the click event sink.
func WithAnalytics(a Analytics) Option {
	return func(svc *Service) { svc.analytics = a }
}

// WithAllowedHosts replaces the accepted destination hosts.
func WithAllowedHosts(hosts ...string) Option {
	return func(svc *Service) {
		svc.allowedHosts = make(map[string]struct{}, len(hosts))
		for _, h := range hosts {
			svc.allowedHosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		}
	}
}

// WithLinkTTL sets how long links are kept.
func WithLinkTTL(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.linkTTL = d
		}
	}
}

// WithSeenTTL sets how long a click is remembered for deduplication.
func WithSeenTTL(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.seenTTL = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithTokenGenerator sets the token source.
func WithTokenGenerator(gen func() string) Option {
	return func(svc *Service) { svc.newToken = gen }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// NewService returns a Service storing links in links. Share URLs are built
// on baseURL.
func NewService(links Store, baseURL string, opts ...Option) *Service {
	svc := &Service{
		links:    links,
		baseURL:  strings.TrimRight(baseURL, "/"),
		linkTTL:  DefaultLinkTTL,
		seenTTL:  DefaultSeenTTL,
		now:      time.Now,
		newToken: NewToken,
		logger:   slog.Default(),
	}
	WithAllowedHosts(DefaultAllowedHosts...)(svc)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewToken returns TokenLength random hex characters.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:TokenLength]
}

// Create validates the destination and stores a new link.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("%w: missing url", apperr.ErrInvalidInput)
	}
	dest, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || dest.Scheme == "" || dest.Host == "" {
		return nil, fmt.Errorf("%w: invalid url", apperr.ErrInvalidInput)
	}
	if scheme := strings.ToLower(dest.Scheme); scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: url scheme must be http or https", apperr.ErrInvalidInput)
	}
	if _, ok := s.allowedHosts[strings.ToLower(dest.Hostname())]; !ok {
		return nil, apperr.ErrHostNotAllowed
	}

	campaign := req.Campaign
	if campaign == "" {
		campaign = DefaultCampaign
	}
	link := Link{
		URL:       dest.String(),
		Campaign:  truncate(campaign, MaxCampaignLen),
		CreatedAt: s.now().UnixMilli(),
	}
	if id := truncate(req.ContentID, MaxContentIDLen); id != "" {
		link.ContentID = &id
	}

	token := s.newToken()
	if err := s.put(ctx, token, link); err != nil {
		return nil, err
	}

	shareURL := s.baseURL + "/s/" + token
	if req.ChannelHint != "" {
		shareURL += "?" + url.Values{"ch": {req.ChannelHint}}.Encode()
	}
	return &CreateResponse{Token: token, ShareURL: shareURL}, nil
}

// Lookup returns the stored link for token.
func (s *Service) Lookup(ctx context.Context, token string) (*Link, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", apperr.ErrInvalidInput)
	}
	raw, found, err := s.links.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("share: get link: %w", err)
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	var link Link
	if err := json.Unmarshal([]byte(raw), &link); err != nil {
		return nil, fmt.Errorf("share: decode link %s: %w", token, err)
	}
	return &link, nil
}

// Redeem resolves token into an attributed redirect and records the click.
// Deduplication and analytics failures are logged and do not fail the
// redirect.
func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (*Redirect, error) {
	token := strings.TrimSpace(req.Token)
	link, err := s.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Revoked {
		return nil, apperr.ErrGone
	}

	dest, err := url.Parse(link.URL)
	if err != nil {
		return nil, fmt.Errorf("share: stored url for %s: %w", token, err)
	}

	channel := req.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	campaign := link.Campaign
	if campaign == "" {
		campaign = DefaultCampaign
	}
	contentID := ""
	if link.ContentID != nil {
		contentID = *link.ContentID
	}

	q := dest.Query()
	q.Set("utm_source", "app")
	q.Set("utm_medium", channel)
	q.Set("utm_campaign", campaign)
	if contentID != "" {
		q.Set("utm_content", "content_"+contentID)
	}
	q.Set("ref", token)
	dest.RawQuery = q.Encode()

	now := s.now()
	unique := s.markSeen(ctx, token, req.IP, req.UserAgent, now)

	if s.analytics != nil {
		event := ClickEvent{
			Name:      ClickEventName,
			Token:     token,
			Channel:   channel,
			Campaign:  campaign,
			ContentID: contentID,
			Unique:    unique,
			Timestamp: now,
		}
		if err := s.analytics.Write(ctx, event); err != nil {
			s.logger.Warn("share: analytics write failed",
				slog.String("token", token),
				slog.String("error", err.Error()))
		}
	}

	return &Redirect{Location: dest.String(), Unique: unique}, nil
}

// SeenKey is the dedupe key of a click by (ip, user agent, UTC day).
func SeenKey(token, ip, userAgent string, at time.Time) string {
	day := at.UTC().Format(time.DateOnly)
	return "seen:" + token + ":" + checksum.Join(ip, userAgent, day)
}

// markSeen reports whether this is the first click of the day for the
// visitor. Without a seen store every click is unique.
func (s *Service) markSeen(ctx context.Context, token, ip, ua string, now time.Time) bool {
	if s.seen == nil {
		return true
	}
	key := SeenKey(token, ip, ua, now)
	_, found, err := s.seen.Get(ctx, key)
	if err != nil {
		s.logger.Warn("share: dedupe lookup failed", slog.String("error", err.Error()))
		return true
	}
	if found {
		return false
	}
	if err := s.seen.Put(ctx, key, "1", s.seenTTL); err != nil {
		s.logger.Warn("share: dedupe write failed", slog.String("error", err.Error()))
	}
	return true
}

// Revoke marks a link as gone. The link is kept for the full link TTL from
// now.
func (s *Service) Revoke(ctx context.Context, token string) error {
	link, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if link.Revoked {
		return nil
	}
	link.Revoked = true
	return s.put(ctx, strings.TrimSpace(token), *link)
}

// Stats returns the recorded clicks of an existing link.
func (s *Service) Stats(ctx context.Context, token string) (ClickStats, error) {
	if _, err := s.Lookup(ctx, token); err != nil {
		return ClickStats{}, err
	}
	reader, ok := s.analytics.(StatsReader)
	if !ok {
		return ClickStats{}, ErrStatsUnsupported
	}
	return reader.Clicks(ctx, strings.TrimSpace(token))
}

func (s *Service) put(ctx context.Context, token string, link Link) error {
	value, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("share: encode link: %w", err)
	}
	if err := s.links.Put(ctx, token, string(value), s.linkTTL); err != nil {
		return fmt.Errorf("share: put link: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
