// Package test provides integration testing infrastructure for the presale API.
//
// A Suite runs the real fiber app behind an httptest server, backed by a
// file-based SQLite database, and talks to it through the public API client.
// The chain is replaced by mocks.MockLedger so tests control exactly which
// transactions exist.
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    suite := test.NewSuite(t)
//	    defer suite.Cleanup()
//
//	    suite.MockLedger.ExpectTransfer(sig, fan, talentWallet, 2_000_000_000)
//	    _, err := suite.APIClient.RecordDeposit(suite.Context(), req)
//	}
package test
