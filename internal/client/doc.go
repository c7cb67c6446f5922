/*
Package client is a Go client for the pipecore HTTP API.

Requests go through a rate limiter and a circuit breaker. A
go-retryablehttp transport retries connection errors and 503 answers, so a
write into a full pipe is repeated with backoff until the reader makes room
or the retry budget runs out. JSON is encoded with sonic.

Failed calls return *APIError, which unwraps to the matching domain
sentinel:

	c := client.New(client.DefaultConfig("http://localhost:8000"))
	info, _ := c.CreateTask(ctx)
	in, _ := c.DefinePipe(ctx, info.ID, "in", pipe.FlagInput, "int32")

	if _, err := c.FeedAll(ctx, info.ID, in, data, true); errors.Is(err, pipe.ErrPipeFull) {
		// the task is not reading
	}
*/
package client
