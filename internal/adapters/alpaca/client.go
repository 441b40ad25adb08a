// Package alpaca adapts the Alpaca trading and market-data APIs to the
// engine's provider and broker ports.
package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/ports"
)

// Alpaca's free tier allows 200 requests/min; stay at 60%.
const requestsPerSec = 2

// Compile-time interface checks.
var _ ports.BarProvider = (*Client)(nil)
var _ ports.Broker = (*Client)(nil)

// ClientConfig holds Alpaca endpoints and credentials.
type ClientConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string // trading API (paper or live)
	DataURL   string // market-data API
	Feed      string // "iex" (free) or "sip"
}

// Client wraps the Alpaca SDK clients behind a shared rate limiter.
type Client struct {
	trading *alpaca.Client
	data    *marketdata.Client
	feed    string
	limiter *rate.Limiter
}

// NewClient creates a Client from the given config.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Feed == "" {
		cfg.Feed = "iex"
	}
	return &Client{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.BaseURL,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.DataURL,
		}),
		feed:    cfg.Feed,
		limiter: rate.NewLimiter(requestsPerSec, 5),
	}
}

// FetchBars implements ports.BarProvider with daily bars for every
// requested symbol. Symbols with no data in the range are simply
// absent from the result.
func (c *Client) FetchBars(ctx context.Context, symbols []string, start, end time.Time) (map[string][]domain.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("alpaca.FetchBars: rate limiter: %w", err)
	}

	multiBars, err := c.data.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      marketdata.Feed(c.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca.FetchBars: GetMultiBars: %w", err)
	}

	series := make(map[string][]domain.Bar, len(multiBars))
	for symbol, bars := range multiBars {
		converted := make([]domain.Bar, len(bars))
		for i, b := range bars {
			converted[i] = domain.Bar{
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    int64(b.Volume),
				Timestamp: b.Timestamp,
			}
		}
		series[symbol] = converted
	}
	return series, nil
}

// Account implements ports.Broker.
func (c *Client) Account(ctx context.Context) (domain.AccountSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("alpaca.Account: rate limiter: %w", err)
	}
	account, err := c.trading.GetAccount()
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("alpaca.Account: %w", err)
	}
	return domain.AccountSnapshot{
		BuyingPower: account.BuyingPower.InexactFloat64(),
		Equity:      account.Equity.InexactFloat64(),
		Currency:    account.Currency,
	}, nil
}

// Clock implements ports.Broker.
func (c *Client) Clock(ctx context.Context) (domain.MarketClock, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.MarketClock{}, fmt.Errorf("alpaca.Clock: rate limiter: %w", err)
	}
	clock, err := c.trading.GetClock()
	if err != nil {
		return domain.MarketClock{}, fmt.Errorf("alpaca.Clock: %w", err)
	}
	return domain.MarketClock{
		IsOpen:    clock.IsOpen,
		NextOpen:  clock.NextOpen,
		NextClose: clock.NextClose,
	}, nil
}

// SubmitBracket implements ports.Broker by placing a market entry with
// linked take-profit and stop-loss legs (Alpaca's bracket order class).
func (c *Client) SubmitBracket(ctx context.Context, ticket domain.BracketTicket) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("alpaca.SubmitBracket: rate limiter: %w", err)
	}

	qty := decimal.NewFromFloat(ticket.Quantity)
	takeProfit := decimal.NewFromFloat(ticket.TakeProfit)
	stopTrigger := decimal.NewFromFloat(ticket.StopTrigger)
	stopLimit := decimal.NewFromFloat(ticket.StopLimit)

	order, err := c.trading.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      ticket.Symbol,
		Qty:         &qty,
		Side:        toAlpacaSide(ticket.Side),
		Type:        alpaca.Market,
		TimeInForce: toTimeInForce(ticket.TimeInForce),
		OrderClass:  alpaca.Bracket,
		TakeProfit:  &alpaca.TakeProfit{LimitPrice: &takeProfit},
		StopLoss: &alpaca.StopLoss{
			StopPrice:  &stopTrigger,
			LimitPrice: &stopLimit,
		},
	})
	if err != nil {
		return "", fmt.Errorf("alpaca.SubmitBracket %s: %w", ticket.Symbol, err)
	}
	return order.ID, nil
}

func toAlpacaSide(side domain.Side) alpaca.Side {
	if side == domain.SideSell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

func toTimeInForce(tif string) alpaca.TimeInForce {
	switch tif {
	case "day":
		return alpaca.Day
	case "ioc":
		return alpaca.IOC
	default:
		return alpaca.GTC
	}
}
