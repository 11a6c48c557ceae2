// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the HTTP client for the votedeck API.

The base address is injected at construction, never read from globals:

	c := client.New("http://localhost:3318")
	items, err := c.FetchCatalog(ctx)
	s := session.New(items, c)

Client implements session.Gateway, so a finished session submits through it.
Errors follow the session taxonomy: any non-2xx answer to a submission
becomes *session.SubmissionRejectedError with the server's message, and a
429 also carries the Retry-After wait. Only an unreachable server wraps
session.ErrTransportUnavailable. Catalog and results reads wrap
session.ErrTransportUnavailable on every failure.

FetchRoundTitle falls back to DefaultRoundTitle when the server has no title.
*/
package client
