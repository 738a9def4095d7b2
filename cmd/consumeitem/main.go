package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/smaartit/GroceryRestockingSystem/internal/api"
	"github.com/smaartit/GroceryRestockingSystem/internal/config"
	"github.com/smaartit/GroceryRestockingSystem/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sess := session.Must(session.NewSession())
	handler := api.NewHandler(store.New(dynamodb.New(sess)), cfg, nil)
	lambda.Start(handler.ConsumeItem)
}
