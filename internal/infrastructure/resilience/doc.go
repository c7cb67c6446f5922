/*
Package resilience provides the circuit breaker used by the pipecore client.

A Breaker wraps calls to a remote service. Consecutive failures open it, so
later calls fail fast with ErrCircuitOpen until Timeout passes; a half-open
breaker then lets MaxRequests probes through and closes again once they all
succeed.

Settings.IsSuccessful decides which errors count against the service. The
client counts API errors (a full pipe, an unknown task) as successes, since
the server answered; only transport failures and 5xx responses trip it.

	breaker := resilience.New("pipecore", resilience.Settings{
		Timeout: 5 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(func() error {
		return call()
	})

State machine:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
