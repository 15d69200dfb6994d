// Package mongo connects to MongoDB with the official v2 driver.
//
// New applies the pool settings from Config, pings the deployment and retries
// while it is unreachable. NewWithDatabase returns the configured database
// directly. Healthcheck wraps a ping for the HTTP health endpoint.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
