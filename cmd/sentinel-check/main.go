package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sentinelops/go-api/sentinel/engine"
	"github.com/sentinelops/go-api/sentinel/gate"
	"github.com/sentinelops/go-api/sentinel/postgres"
	"github.com/sentinelops/go-api/sentinel/slogger"
)

func main() {
	slogger.Init()
	log.Println("Starting security operations engine check...")

	db, err := postgres.Connect(postgres.ConfigFromEnv())
	if err != nil {
		log.Fatalf("❌ Failed to establish database connection: %v", err)
	}

	// Try a trivial query first
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatalf("❌ Failed to execute query: %v", err)
	}
	log.Printf("Native JSON columns: %v", postgres.SupportsNativeJSON(db))

	// Assemble one telemetry snapshot with an operator identity
	eng := engine.New(db, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := eng.GetTelemetry(ctx, gate.Caller{Roles: []string{"ops"}}, false)
	if err != nil {
		log.Fatalf("❌ Failed to assemble telemetry: %v", err)
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Fatalf("❌ Failed to serialize telemetry: %v", err)
	}

	fmt.Println(string(out))
	fmt.Println("✅ Security operations engine check successful!")
}
