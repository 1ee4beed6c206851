// The querydoc command runs the document question answering service.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kart-io/querydoc/internal/querydoc"
	"github.com/kart-io/querydoc/pkg/infra/app"
)

func main() {
	opts := querydoc.NewOptions()

	a := app.NewApp(
		app.WithName("querydoc"),
		app.WithShortDescription("Document question answering service"),
		app.WithDescription("querydoc downloads a document, indexes it into a "+
			"vector store and answers batches of questions about its content "+
			"over HTTP."),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return querydoc.Run(opts)
		}),
	)

	a.Run()
}
