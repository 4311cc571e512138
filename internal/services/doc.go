// Package services implements reading a Spotify library over the Web API.
//
// # Fetcher
//
// [Fetcher] issues authorized GET requests with a bearer token and walks paginated collections.
// Each page gets a [RetryBudget] of attempts with a fixed delay between them. Network errors,
// 429 and 5xx responses, and bodies that are not a page object are retried. Other 4xx responses
// fail immediately.
//
// [Fetcher.FetchAll] requests the first page with limit set and then follows the server's next link
// exactly as returned until it is null. Either every item is returned in page order or an error is.
//
// # Errors
//
// Failures are reported as [*FetchError], wrapping one of:
//   - [shared.ErrUnauthorized] : the token was rejected (401)
//   - [shared.ErrAPIRequest] : any other non-retryable 4xx
//   - [shared.ErrFetchExhausted] : every attempt in the budget failed
//   - [shared.ErrPaginationLoop] : a next link pointed at a page already fetched
//   - a context error when the caller cancelled
//
// # Progress
//
// Fetch events go to an [Observer]. [LogObserver] writes them to a logger and [MultiObserver]
// combines it with others such as the prometheus observer in the metrics package.
package services
