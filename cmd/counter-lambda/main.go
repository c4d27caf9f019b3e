package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/connectors/welambda"
	"github.com/weegigs/wee-counter-go/counter"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("slice", counter.Name).Logger()

	service, err := live(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure counter service")
	}

	lambda.Start(welambda.NewHandler[counter.State](service, welambda.Logger(&logger)))
}
