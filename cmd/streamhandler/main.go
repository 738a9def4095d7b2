package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/juju/clock"

	"github.com/smaartit/GroceryRestockingSystem/internal/config"
	"github.com/smaartit/GroceryRestockingSystem/internal/pipeline"
	"github.com/smaartit/GroceryRestockingSystem/internal/quarantine"
	"github.com/smaartit/GroceryRestockingSystem/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sess := session.Must(session.NewSession())

	var dlq pipeline.Quarantine
	if cfg.QuarantineQueueURL != "" {
		dlq = quarantine.New(sqs.New(sess), cfg.QuarantineQueueURL)
	}

	p := pipeline.New(store.New(dynamodb.New(sess)), dlq, clock.WallClock, pipeline.Config{
		GroceryTable:     cfg.GroceryTable,
		GroceryNameIndex: cfg.GroceryNameIndex,
	})
	lambda.Start(p.HandleEvent)
}
