package pipelinelog

import "context"

// ConsoleFetcher performs the authenticated GET against a CI console endpoint.
// Non-2xx statuses are reported through status, not err.
type ConsoleFetcher interface {
	FetchConsole(ctx context.Context, url string) (status int, body string, err error)
}
