// Package api exposes the chat pipeline over HTTP.
//
// All /api/ routes take the shape /api/{user_id}/... and sit behind the JWT
// middleware; the path user must match the token subject or the request
// fails 403 before any store access. Handlers translate pipeline errors
// onto a small JSON error taxonomy: validation failures are 400, missing or
// foreign resources are 404, rate limiting is 429, everything unexpected is
// a logged 500 with a generic body.
//
// Endpoints:
//
//	POST   /api/{user_id}/chat
//	GET    /api/{user_id}/conversations
//	GET    /api/{user_id}/conversations/{id}
//	DELETE /api/{user_id}/conversations/{id}
//	GET    /api/{user_id}/conversations/{id}/export
//	GET    /api/{user_id}/todos
//	GET    /health
//	GET    /health/ready
package api
