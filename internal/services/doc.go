// Package services talks to the promotion tracker REST API.
//
// # Layers
//
// [APIService] is the raw layer: it performs a request and hands back an [APIResponse]
// with status, headers and body (decoded into JSONData when the body is JSON). The
// `promo api` commands sit directly on it.
//
// [Client] is the typed layer and implements [PromotionAPI]. Each operation maps to
// one endpoint:
//
//	GET    /User/name/{name}
//	GET    /User/{userId}
//	GET    /Release/user/{userId}
//	POST   /Release
//	PUT    /Release/{releaseId}
//	DELETE /Release/{releaseId}
//	GET    /PromotionTasks
//	POST   /PromotionTasks                 (create, or replace when taskId is set)
//	PUT    /PromotionTasks/{taskId}/status   (body: integer status)
//	PUT    /PromotionTasks/{taskId}/priority (body: integer priority)
//
// # Error Handling
//
// Transport failures and non-2xx responses are logged with the operation, method and
// path, then returned wrapping [shared.ErrAPIRequest]. Callers never branch on the
// cause. There are no retries and nothing is cached.
//
// # Transport
//
// [NewHTTPClient] applies the configured timeout and, when a token is set, an oauth2
// static bearer token. [WithRateLimit] throttles outgoing requests. Every request
// carries a fresh X-Request-ID.
package services
