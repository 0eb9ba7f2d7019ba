// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/talentpad/presale/internal/metrics"
	"github.com/talentpad/presale/internal/types"
	"github.com/talentpad/presale/pkg/api/v1/handlers"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first (i.e. deposit routes before presale routes)
2. For similar scopes, put the endpoints in alphabetical order
3. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
4. For clarity, naming should match the action (i.e. GetPresale, FinalizePresale)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
	// LegacyDepositPath is the path of the hosted function the web client used to call
	LegacyDepositPath = "/functions/v1/record-presale-deposit"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Service routes
	HealthCheck = "HealthCheck"
	Metrics     = "Metrics"

	// Deposit routes
	RecordDeposit       = "RecordDeposit"
	CheckDeposit        = "CheckDeposit"
	LegacyRecordDeposit = "LegacyRecordDeposit"

	// Talent routes
	GetTalents         = "GetTalents"
	GetTalentByHandle  = "GetTalentByHandle"
	GetTalent          = "GetTalent"
	CreateTalent       = "CreateTalent"
	UpdateTalentWallet = "UpdateTalentWallet"

	// Presale routes
	GetPresales            = "GetPresales"
	GetPresale             = "GetPresale"
	GetPresaleSummary      = "GetPresaleSummary"
	GetPresalePositions    = "GetPresalePositions"
	GetPresalePosition     = "GetPresalePosition"
	GetPresaleTransactions = "GetPresaleTransactions"
	CreatePresale          = "CreatePresale"
	FinalizePresale        = "FinalizePresale"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering is important because routes will try and match in the order they are registered.
// For example, if we register GetTalent before GetTalentByHandle, "handle" will get interpreted as a talent ID.
func RegisterRoutes(
	app *fiber.App,
	depositHandler *handlers.DepositHandler,
	talentHandler *handlers.TalentHandler,
	presaleHandler *handlers.PresaleHandler,
	positionHandler *handlers.PositionHandler,
) {
	// Service endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(types.HealthResponse{Status: "healthy"})
	}).Name(HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler())).Name(Metrics)

	// Path of the hosted function, kept for existing web clients
	app.Post(LegacyDepositPath, depositHandler.RecordDeposit).Name(LegacyRecordDeposit)

	v1 := app.Group(APIv1Prefix)

	// ---------------------------
	// Deposit endpoints
	deposits := v1.Group("/deposits")
	deposits.Post("/", depositHandler.RecordDeposit).Name(RecordDeposit)
	deposits.Post("/check", depositHandler.CheckDeposit).Name(CheckDeposit)

	// ---------------------------
	// Talent endpoints
	talents := v1.Group("/talents")
	talents.Get("/", talentHandler.ListTalents).Name(GetTalents)
	talents.Get("/handle/:handle", talentHandler.GetTalentByHandle).Name(GetTalentByHandle)
	talents.Get("/:id", talentHandler.GetTalent).Name(GetTalent)
	talents.Post("/", talentHandler.CreateTalent).Name(CreateTalent)
	talents.Put("/:id/wallet", talentHandler.UpdateTalentWallet).Name(UpdateTalentWallet)

	// ---------------------------
	// Presale endpoints
	presales := v1.Group("/presales")
	presales.Get("/", presaleHandler.ListPresales).Name(GetPresales)
	presales.Get("/:id", presaleHandler.GetPresale).Name(GetPresale)
	presales.Get("/:id/positions", positionHandler.ListPositions).Name(GetPresalePositions)
	presales.Get("/:id/positions/:wallet", positionHandler.GetPosition).Name(GetPresalePosition)
	presales.Get("/:id/summary", presaleHandler.GetPresaleSummary).Name(GetPresaleSummary)
	presales.Get("/:id/transactions", presaleHandler.ListPresaleTransactions).Name(GetPresaleTransactions)
	presales.Post("/", presaleHandler.CreatePresale).Name(CreatePresale)
	presales.Post("/:id/finalize", presaleHandler.FinalizePresale).Name(FinalizePresale)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCacheMu.Lock()
		defer routeCacheMu.Unlock()
		routeCache = make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app,
			&handlers.DepositHandler{},
			&handlers.TalentHandler{},
			&handlers.PresaleHandler{},
			&handlers.PositionHandler{},
		)

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Deposit route helpers

// RecordDepositURL returns the URL for submitting a deposit
func RecordDepositURL() string {
	return BuildURL(RecordDeposit, nil, nil)
}

// CheckDepositURL returns the URL for the deposit preflight check
func CheckDepositURL() string {
	return BuildURL(CheckDeposit, nil, nil)
}

// Talent route helpers

// GetTalentsURL returns the URL for listing talents
func GetTalentsURL(queryParams url.Values) string {
	return BuildURL(GetTalents, nil, queryParams)
}

// GetTalentURL returns the URL for getting a talent by ID
func GetTalentURL(id string) string {
	return BuildURL(GetTalent, map[string]string{"id": id}, nil)
}

// GetTalentByHandleURL returns the URL for getting a talent by handle
func GetTalentByHandleURL(handle string) string {
	return BuildURL(GetTalentByHandle, map[string]string{"handle": handle}, nil)
}

// CreateTalentURL returns the URL for creating a talent
func CreateTalentURL() string {
	return BuildURL(CreateTalent, nil, nil)
}

// UpdateTalentWalletURL returns the URL for setting a talent wallet
func UpdateTalentWalletURL(id string) string {
	return BuildURL(UpdateTalentWallet, map[string]string{"id": id}, nil)
}

// Presale route helpers

// GetPresalesURL returns the URL for listing presales
func GetPresalesURL(queryParams url.Values) string {
	return BuildURL(GetPresales, nil, queryParams)
}

// GetPresaleURL returns the URL for getting a presale by ID
func GetPresaleURL(id string) string {
	return BuildURL(GetPresale, map[string]string{"id": id}, nil)
}

// GetPresaleSummaryURL returns the URL for a presale summary
func GetPresaleSummaryURL(id string) string {
	return BuildURL(GetPresaleSummary, map[string]string{"id": id}, nil)
}

// GetPresalePositionsURL returns the URL for listing the positions of a presale
func GetPresalePositionsURL(id string, queryParams url.Values) string {
	return BuildURL(GetPresalePositions, map[string]string{"id": id}, queryParams)
}

// GetPresalePositionURL returns the URL for one wallet position
func GetPresalePositionURL(id, wallet string) string {
	return BuildURL(GetPresalePosition, map[string]string{"id": id, "wallet": wallet}, nil)
}

// GetPresaleTransactionsURL returns the URL for listing credited transactions
func GetPresaleTransactionsURL(id string, queryParams url.Values) string {
	return BuildURL(GetPresaleTransactions, map[string]string{"id": id}, queryParams)
}

// CreatePresaleURL returns the URL for creating a presale
func CreatePresaleURL() string {
	return BuildURL(CreatePresale, nil, nil)
}

// FinalizePresaleURL returns the URL for finalizing a presale
func FinalizePresaleURL(id string) string {
	return BuildURL(FinalizePresale, map[string]string{"id": id}, nil)
}
