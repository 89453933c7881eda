// Package testdb provides helpers for Postgres integration tests.
//
// Tests connect with Open, which skips the test when no database URL is
// configured and migrates the schema with goose. WithTx runs a test body in
// a transaction that is always rolled back, so tests leave no rows behind:
//
//	func TestIntegration_Something(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        store := postgres.NewPostgresTaskStore(tx)
//	        // ...
//	    })
//	}
package testdb
