// Package client provides the API client for interacting with the presale API
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/types"
	"github.com/talentpad/presale/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (types.HealthResponse, error)

	// Deposit Endpoints
	RecordDeposit(ctx context.Context, req types.DepositRequest) (types.DepositSuccessResponse, error)
	CheckDeposit(ctx context.Context, req types.DepositCheckRequest) (types.DepositCheckResponse, error)

	// Talent Endpoints
	ListTalents(ctx context.Context, opts *models.ListOptions) (types.ListResponse[models.Talent], error)
	GetTalent(ctx context.Context, id string) (models.Talent, error)
	GetTalentByHandle(ctx context.Context, handle string) (models.Talent, error)
	CreateTalent(ctx context.Context, req types.CreateTalentRequest) (models.Talent, error)
	UpdateTalentWallet(ctx context.Context, id string, req types.UpdateWalletRequest) (models.Talent, error)

	// Presale Endpoints
	ListPresales(ctx context.Context, opts *models.ListOptions) (types.ListResponse[models.Presale], error)
	GetPresale(ctx context.Context, id string) (models.Presale, error)
	GetPresaleSummary(ctx context.Context, id string) (types.PresaleSummary, error)
	CreatePresale(ctx context.Context, req types.CreatePresaleRequest) (models.Presale, error)
	FinalizePresale(ctx context.Context, id string) (models.Presale, error)
	ListPositions(ctx context.Context, presaleID string, opts *models.ListOptions) (types.ListResponse[types.PositionResponse], error)
	GetPosition(ctx context.Context, presaleID, wallet string) (types.PositionResponse, error)
	ListTransactions(ctx context.Context, presaleID string, opts *models.ListOptions) (types.ListResponse[models.ProcessedTransaction], error)
}

var _ Client = &APIClient{}

// DepositError is a rejected deposit submission. Actual and Claimed are set
// when the on-chain amount did not match the claimed one.
type DepositError struct {
	Status  int
	Message string
	Actual  *int64
	Claimed *int64
}

func (e *DepositError) Error() string {
	if e.Actual != nil && e.Claimed != nil {
		return fmt.Sprintf("deposit rejected (%d): %s (actual %d, claimed %d)", e.Status, e.Message, *e.Actual, *e.Claimed)
	}
	return fmt.Sprintf("deposit rejected (%d): %s", e.Status, e.Message)
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// send executes the request and returns the status and body
func send(agent *fiber.Agent) (int, []byte, error) {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	return statusCode, body, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// doRequest sends the HTTP request and decodes a plain JSON response into v
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, err := send(agent)
	if err != nil {
		return err
	}

	if !isSuccess(statusCode) {
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// slugEnvelope mirrors types.SlugResponse with the data left undecoded
type slugEnvelope struct {
	Slug  types.Slug      `json:"slug"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// doSlugRequest sends the HTTP request and decodes the data of a SlugResponse into v
func (c *APIClient) doSlugRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, err := send(agent)
	if err != nil {
		return err
	}

	var env slugEnvelope
	decodeErr := json.Unmarshal(body, &env)

	if !isSuccess(statusCode) {
		msg := string(body)
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		return &fiber.Error{
			Code:    statusCode,
			Message: msg,
		}
	}

	if decodeErr != nil {
		return fmt.Errorf("error decoding slug response: %w", decodeErr)
	}
	if env.Slug != types.SuccessSlug {
		return fmt.Errorf("unexpected response slug %q: %s", env.Slug, env.Error)
	}
	if v == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}

// executeRequest creates an agent, sends the request, and processes a plain response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(agent, response)
}

// executeSlugRequest creates an agent, sends the request, and unwraps a SlugResponse
func (c *APIClient) executeSlugRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.doSlugRequest(agent, response)
}

// listQuery converts list options to query parameters
func listQuery(opts *models.ListOptions) url.Values {
	q := url.Values{}
	if opts == nil {
		return q
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	return q
}

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (types.HealthResponse, error) {
	var resp types.HealthResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), nil, &resp)
	return resp, err
}

// RecordDeposit submits a deposit for verification. A rejection is returned
// as a *DepositError.
func (c *APIClient) RecordDeposit(ctx context.Context, req types.DepositRequest) (types.DepositSuccessResponse, error) {
	var resp types.DepositSuccessResponse
	agent, err := c.createAgent(ctx, http.MethodPost, routes.RecordDepositURL(), req)
	if err != nil {
		return resp, err
	}

	statusCode, body, err := send(agent)
	if err != nil {
		return resp, err
	}

	if !isSuccess(statusCode) {
		var rejected types.DepositErrorResponse
		if err := json.Unmarshal(body, &rejected); err != nil || rejected.Error == "" {
			return resp, &fiber.Error{Code: statusCode, Message: string(body)}
		}
		return resp, &DepositError{
			Status:  statusCode,
			Message: rejected.Error,
			Actual:  rejected.Actual,
			Claimed: rejected.Claimed,
		}
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("error decoding response: %w", err)
	}
	if !resp.Success {
		return resp, errors.New("deposit response did not report success")
	}
	return resp, nil
}

// CheckDeposit runs the preflight check for a planned deposit
func (c *APIClient) CheckDeposit(ctx context.Context, req types.DepositCheckRequest) (types.DepositCheckResponse, error) {
	var resp types.DepositCheckResponse
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.CheckDepositURL(), req, &resp)
	return resp, err
}

// ListTalents lists talents
func (c *APIClient) ListTalents(ctx context.Context, opts *models.ListOptions) (types.ListResponse[models.Talent], error) {
	var resp types.ListResponse[models.Talent]
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetTalentsURL(listQuery(opts)), nil, &resp)
	return resp, err
}

// GetTalent gets a talent by ID
func (c *APIClient) GetTalent(ctx context.Context, id string) (models.Talent, error) {
	var talent models.Talent
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetTalentURL(id), nil, &talent)
	return talent, err
}

// GetTalentByHandle gets a talent by handle
func (c *APIClient) GetTalentByHandle(ctx context.Context, handle string) (models.Talent, error) {
	var talent models.Talent
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetTalentByHandleURL(handle), nil, &talent)
	return talent, err
}

// CreateTalent registers a talent
func (c *APIClient) CreateTalent(ctx context.Context, req types.CreateTalentRequest) (models.Talent, error) {
	var talent models.Talent
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreateTalentURL(), req, &talent)
	return talent, err
}

// UpdateTalentWallet sets the wallet of a talent
func (c *APIClient) UpdateTalentWallet(ctx context.Context, id string, req types.UpdateWalletRequest) (models.Talent, error) {
	var talent models.Talent
	err := c.executeSlugRequest(ctx, http.MethodPut, routes.UpdateTalentWalletURL(id), req, &talent)
	return talent, err
}

// ListPresales lists presales
func (c *APIClient) ListPresales(ctx context.Context, opts *models.ListOptions) (types.ListResponse[models.Presale], error) {
	var resp types.ListResponse[models.Presale]
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresalesURL(listQuery(opts)), nil, &resp)
	return resp, err
}

// GetPresale gets a presale by ID
func (c *APIClient) GetPresale(ctx context.Context, id string) (models.Presale, error) {
	var presale models.Presale
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresaleURL(id), nil, &presale)
	return presale, err
}

// GetPresaleSummary gets the progress figures of a presale
func (c *APIClient) GetPresaleSummary(ctx context.Context, id string) (types.PresaleSummary, error) {
	var summary types.PresaleSummary
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresaleSummaryURL(id), nil, &summary)
	return summary, err
}

// CreatePresale opens a presale
func (c *APIClient) CreatePresale(ctx context.Context, req types.CreatePresaleRequest) (models.Presale, error) {
	var presale models.Presale
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreatePresaleURL(), req, &presale)
	return presale, err
}

// FinalizePresale settles an ended presale
func (c *APIClient) FinalizePresale(ctx context.Context, id string) (models.Presale, error) {
	var presale models.Presale
	err := c.executeSlugRequest(ctx, http.MethodPost, routes.FinalizePresaleURL(id), nil, &presale)
	return presale, err
}

// ListPositions lists the positions of a presale
func (c *APIClient) ListPositions(ctx context.Context, presaleID string, opts *models.ListOptions) (types.ListResponse[types.PositionResponse], error) {
	var resp types.ListResponse[types.PositionResponse]
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresalePositionsURL(presaleID, listQuery(opts)), nil, &resp)
	return resp, err
}

// GetPosition gets the position of a wallet in a presale
func (c *APIClient) GetPosition(ctx context.Context, presaleID, wallet string) (types.PositionResponse, error) {
	var pos types.PositionResponse
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresalePositionURL(presaleID, wallet), nil, &pos)
	return pos, err
}

// ListTransactions lists the transactions credited to a presale
func (c *APIClient) ListTransactions(ctx context.Context, presaleID string, opts *models.ListOptions) (types.ListResponse[models.ProcessedTransaction], error) {
	var resp types.ListResponse[models.ProcessedTransaction]
	err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetPresaleTransactionsURL(presaleID, listQuery(opts)), nil, &resp)
	return resp, err
}
