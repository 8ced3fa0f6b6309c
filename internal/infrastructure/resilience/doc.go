/*
Package resilience provides the circuit breaker guarding calls to the document backend.

The breaker only fails fast: it never retries an operation. While open, backend
calls return ErrCircuitOpen immediately instead of hanging on an unhealthy host.

	breaker := resilience.New("backend", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 10
		},
		IsSuccessful: func(err error) bool {
			return err == nil || types.IsValidation(err)
		},
	})

	folders, err := resilience.Do(breaker, func() ([]types.Folder, error) {
		return fetch(ctx)
	})

States:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
