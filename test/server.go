package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/talentpad/presale/internal/app"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/pkg/api/v1/client"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// SetupServer wires the services to the suite's repositories and mock
// ledger, and serves the app over httptest.
func SetupServer(suite *Suite) {
	suite.TalentService = services.NewTalentService(suite.TalentRepo)
	suite.PresaleService = services.NewPresaleService(suite.PresaleRepo, suite.TalentRepo, suite.PositionRepo, suite.TransactionRepo)
	suite.PositionService = services.NewPositionService(suite.PositionRepo, suite.PresaleRepo)
	suite.DepositService = services.NewDepositService(
		suite.PresaleRepo,
		suite.TalentRepo,
		suite.PositionRepo,
		suite.TransactionRepo,
		suite.DepositRepo,
		suite.MockLedger,
		services.DepositOptions{},
	)

	suite.App = app.NewApp(app.Options{}, app.Services{
		Talent:   suite.TalentService,
		Presale:  suite.PresaleService,
		Position: suite.PositionService,
		Deposit:  suite.DepositService,
	})

	// Create test server using adaptor to convert Fiber app to http.Handler
	suite.Server = httptest.NewServer(adaptor.FiberApp(suite.App))

	apiClient, err := client.NewClient(&client.Options{
		BaseURL: suite.Server.URL,
		Timeout: testClientTimeout,
	})
	suite.Require().NoError(err, "Failed to create API client")
	suite.APIClient = apiClient

	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		if suite.Server != nil {
			suite.Server.Close()
		}
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}
