// Package server is a development backend for the promotion tracker REST API.
//
// # Router
//
// [NewRouter] builds a chi mux that tags each request with an id, logs it with charm's logger and
// recovers panics. Extra [Middleware] such as [BearerToken] runs after that stack.
//
// # Handlers
//
// A [Handler] mounts its own routes. [PromotionHandler] serves users, releases and promotion tasks
// from the sqlite repositories:
//
//	GET    /User/name/{name}
//	GET    /User/{userId}                      user with releases and tasks nested
//	GET    /Release/user/{userId}
//	POST   /Release
//	PUT    /Release/{releaseId}                partial update
//	DELETE /Release/{releaseId}
//	GET    /PromotionTasks                     optional ?releaseId=
//	POST   /PromotionTasks                     create when taskId is 0, replace otherwise
//	PUT    /PromotionTasks/{taskId}/status     bare integer body
//	PUT    /PromotionTasks/{taskId}/priority   bare integer body
//
// Missing entities answer 404 and invalid input 400, both with a JSON {"error": ...} body.
//
// # Lifecycle
//
// [Server.Run] listens until its context is cancelled. [Seed] creates the demo account used by
// `promo serve --seed`.
package server
