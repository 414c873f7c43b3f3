package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/realty/domain"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultLanguage  = "ru"
	DefaultUserAgent = "realty-workspace/1.0"

	// UnknownAddress is returned when a place has neither structured parts nor a display name.
	UnknownAddress = "Неизвестный адрес"

	minQueryLength = 3
	defaultLimit   = 5
	gatewayName    = "geocoding"
)

type Config struct {
	BaseURL   string
	Language  string
	UserAgent string
	Timeout   time.Duration
	Limit     int
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *fasthttp.Client
}

// Client talks to a Nominatim-compatible place search service.
type Client struct {
	baseURL   string
	language  string
	userAgent string
	timeout   time.Duration
	limit     int
	http      *fasthttp.Client
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &fasthttp.Client{
			Name:                cfg.UserAgent,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		language:  cfg.Language,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		limit:     cfg.Limit,
		http:      cfg.HTTPClient,
		logger:    logger,
	}
}

type place struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type"`
	Importance  float64  `json:"importance"`
	Address     *address `json:"address"`
	Error       string   `json:"error"`
}

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
}

// Search returns up to the configured number of candidates for an autocomplete query.
// Queries shorter than three characters return no results without a network call.
func (c *Client) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return []domain.GeocodeResult{}, nil
	}
	var places []place
	if err := c.get(ctx, "/search", map[string]string{
		"q":     query,
		"limit": strconv.Itoa(c.limit),
	}, &places); err != nil {
		return nil, err
	}

	out := make([]domain.GeocodeResult, 0, len(places))
	for _, p := range places {
		res, err := p.toResult()
		if err != nil {
			c.logger.Debug("skipping malformed place", zap.String("display_name", p.DisplayName), zap.Error(err))
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Forward resolves an address to the best matching place.
func (c *Client) Forward(ctx context.Context, addr string) (*domain.GeocodeResult, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		verr := &domain.ValidationError{}
		verr.Missing("address")
		return nil, verr
	}
	var places []place
	if err := c.get(ctx, "/search", map[string]string{
		"q":     addr,
		"limit": "1",
	}, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.ErrAddressNotFound
	}
	res, err := places[0].toResult()
	if err != nil {
		return nil, domain.NewGatewayError(gatewayName, err)
	}
	return &res, nil
}

// Reverse describes the place at the given point.
func (c *Client) Reverse(ctx context.Context, at domain.Coordinates) (string, error) {
	if !at.Valid() {
		verr := &domain.ValidationError{}
		verr.Invalidf("coordinates out of range: %v,%v", at.Lat, at.Lng)
		return "", verr
	}
	var p place
	if err := c.get(ctx, "/reverse", map[string]string{
		"lat": strconv.FormatFloat(at.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(at.Lng, 'f', -1, 64),
	}, &p); err != nil {
		return "", err
	}
	if p.Error != "" {
		return "", domain.NewGatewayError(gatewayName, fmt.Errorf("%s", p.Error))
	}
	return formatAddress(p.DisplayName, p.Address), nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.NewGatewayError(gatewayName, err)
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("format", "json")
	args.Set("addressdetails", "1")
	args.Set("accept-language", c.language)
	for k, v := range params {
		args.Set(k, v)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?" + string(args.QueryString()))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("geocoding request failed", zap.String("path", path), zap.Error(err))
		return domain.NewGatewayError(gatewayName, err)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		c.logger.Warn("geocoding request rejected", zap.String("path", path), zap.Int("status", status))
		return domain.NewGatewayError(gatewayName, fmt.Errorf("http status %d", status))
	}
	c.logger.Debug("geocoding request",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(started)),
	)

	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return domain.NewGatewayError(gatewayName, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (p place) toResult() (domain.GeocodeResult, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}
	return domain.GeocodeResult{
		Coordinates:      domain.Coordinates{Lat: lat, Lng: lng},
		DisplayName:      p.DisplayName,
		FormattedAddress: formatAddress(p.DisplayName, p.Address),
		Type:             p.Type,
		Importance:       p.Importance,
	}, nil
}

// formatAddress builds a short "locality, street, house" label.
// The locality is the first of city, town, village and municipality.
// It falls back to the display name and then to UnknownAddress.
func formatAddress(displayName string, a *address) string {
	fallback := displayName
	if fallback == "" {
		fallback = UnknownAddress
	}
	if a == nil {
		return fallback
	}

	var parts []string
	for _, locality := range []string{a.City, a.Town, a.Village, a.Municipality} {
		if locality != "" {
			parts = append(parts, locality)
			break
		}
	}
	var street []string
	if a.Road != "" {
		street = append(street, a.Road)
	}
	if a.HouseNumber != "" {
		street = append(street, a.HouseNumber)
	}
	if len(street) > 0 {
		parts = append(parts, strings.Join(street, ", "))
	}

	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
