package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orders/internal/domain/menus"
)

const allMenusQuery = `query AllMenus {
  allMenus {
    id_menu
    dish_id
    period_id
    dish_category
    menu_date
    dish_name
    dish_description
    menu_period
    start_time
    end_time
  }
}`

const (
	fetchAttempts = 3
	fetchBackoff  = 50 * time.Millisecond
)

// retryableError marks failures worth another attempt: the service could not
// be reached or answered with a 5xx.
type retryableError struct {
	error
}

func (e retryableError) Unwrap() error {
	return e.error
}

var menuLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "menu_lookups_total",
	Help: "Total number of menu service lookups by outcome",
}, []string{"outcome"})

type MenuClient struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

func NewMenuClient(url string, timeout time.Duration, httpClient *http.Client) *MenuClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &MenuClient{
		url:     url,
		timeout: timeout,
		http:    httpClient,
	}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type allMenusResponse struct {
	Data *struct {
		AllMenus []menus.Slot `json:"allMenus"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Lookup fetches the slot with menuID from the menu service.
func (c *MenuClient) Lookup(ctx context.Context, menuID int64) (menus.Slot, error) {
	ctx, span := otel.Tracer("orders").Start(ctx, "menus.lookup")
	defer span.End()
	span.SetAttributes(attribute.Int64("menu.id", menuID))

	all, err := c.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return menus.Slot{}, err
	}

	slot, err := FindSlot(all, menuID)
	if err != nil {
		menuLookupsTotal.WithLabelValues("not_found").Inc()
		log.FromContext(ctx).WithField("menu_id", menuID).Warn("Menu not found in menu service")
		return menus.Slot{}, err
	}

	menuLookupsTotal.WithLabelValues("found").Inc()
	return slot, nil
}

// All fetches the whole menu collection.
func (c *MenuClient) All(ctx context.Context) ([]menus.Slot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slots, err := c.fetchWithRetry(ctx)
	if err != nil {
		menuLookupsTotal.WithLabelValues("failed").Inc()
		log.FromContext(ctx).WithField("error", err).Error("Menu service lookup failed")
		return nil, fmt.Errorf("%w: %w", menus.ErrLookupFailed, err)
	}

	return slots, nil
}

// fetchWithRetry retries transient failures while ctx allows it.
func (c *MenuClient) fetchWithRetry(ctx context.Context) ([]menus.Slot, error) {
	var (
		slots   []menus.Slot
		lastErr error
	)

	_ = retry.Retry(
		func(attempt uint) error {
			slots, lastErr = c.fetch(ctx)

			var retryable retryableError
			if lastErr != nil && !errors.As(lastErr, &retryable) {
				// permanent failure, stop retrying
				return nil
			}
			return lastErr
		},
		strategy.Limit(fetchAttempts),
		strategy.Backoff(backoff.Linear(fetchBackoff)),
		func(attempt uint) bool {
			return attempt == 0 || ctx.Err() == nil
		},
	)

	return slots, lastErr
}

func (c *MenuClient) fetch(ctx context.Context) ([]menus.Slot, error) {
	body, err := json.Marshal(graphQLRequest{Query: allMenusQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to call menu service: %w", err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, retryableError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("unexpected status code from menu service: %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, retryableError{err}
		}
		return nil, err
	}

	var decoded allMenusResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode menu service response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("menu service returned an error: %s", decoded.Errors[0].Message)
	}
	if decoded.Data == nil || decoded.Data.AllMenus == nil {
		return nil, fmt.Errorf("menu service returned no menus")
	}

	return decoded.Data.AllMenus, nil
}

func FindSlot(all []menus.Slot, menuID int64) (menus.Slot, error) {
	for _, slot := range all {
		if slot.MenuID == menuID {
			return slot, nil
		}
	}
	return menus.Slot{}, menus.ErrSlotNotFound
}
