// Package postwave provides a Go client for the Postwave transactional
// email API: sending email, managing webhook subscriptions, querying
// delivery statistics, and parsing inbound webhook callbacks.
//
// Every outbound call runs through a resilience pipeline of five fixed
// layers: a concurrency rate limiter, a total-request timeout, retries with
// exponential backoff, a circuit breaker, and a per-attempt timeout. The
// Postwave API is POST-only, and POSTs are never retried, so automatic
// retry can never duplicate a send; the retry layer exists for the breaker
// and timeout machinery around it and for any idempotent methods a future
// API revision might add.
//
// Basic usage:
//
//	client, err := postwave.New("your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.SendEmail(ctx, &postwave.EmailMessage{
//	    FromEmail: "noreply@example.com",
//	    Subject:   "Welcome",
//	    To:        []string{"user@example.com"},
//	    BodyText:  "Hello!",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("job:", result.JobID)
//
// Webhook callbacks arrive at a server the caller operates; this package
// only parses their bodies:
//
//	cb, err := postwave.ParseCallback(body)
//	if err != nil {
//	    // not JSON at all
//	}
//	switch cb.Event {
//	case postwave.CallbackEventBounce:
//	    // cb.Recipient, cb.Bounce
//	}
package postwave
