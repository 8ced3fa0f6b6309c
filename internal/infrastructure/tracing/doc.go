/*
Package tracing provides lightweight request tracing.

Each local API request gets a trace id (reusing an incoming X-Request-ID)
and every backend call it triggers opens a child span. The trace id is sent
to the backend as X-Request-ID so both sides can be correlated in logs.
Finished spans are logged by a buffered collector, off the request path.

	tracer := tracing.New("docdesk", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "backend.list_folders")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	tracing.Inject(ctx, req.Header)
*/
package tracing
