package main

import (
	"context"

	"github.com/pkg/errors"
)

func main() {
	app := mustBootstrapEuroLinkAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !errors.Is(err, context.Canceled) {
		app.log.Errorw("eurolink-api stopped", "error", err)
		panic(err)
	}
}
