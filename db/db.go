// api/db/db.go
package db

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/supplysight/sentinel/config"
	logger "github.com/supplysight/sentinel/logging"
)

// Neo4jDriver is the shared driver for the user/persona directory graph.
// Initialized once at startup; the driver pools connections internally.
var Neo4jDriver neo4j.Driver

func InitNeo4j() error {
	uri := config.GetString("neo4j.uri")

	driver, err := neo4j.NewDriver(
		uri,
		neo4j.BasicAuth(
			config.GetString("neo4j.username"),
			config.GetString("neo4j.password"),
			"",
		),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.MaxConnectionPoolSize = config.GetInt("neo4j.maxPoolSize")
			c.Log = neo4j.ConsoleLogger(neo4j.ERROR)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(); err != nil {
		return fmt.Errorf("failed to connect to Neo4j at %s: %w", uri, err)
	}

	Neo4jDriver = driver
	logger.Info("Connected to directory store", zap.String("uri", uri))
	return nil
}

func CloseNeo4j() {
	if Neo4jDriver == nil {
		return
	}
	if err := Neo4jDriver.Close(); err != nil {
		logger.Error("Error closing Neo4j connection", zap.Error(err))
	}
}
