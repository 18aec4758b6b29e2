// Package service contains the business logic of Daily3.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)     → parses forms, renders templates, sets status codes
//	Service (business) → validates, publishes to reddit, annotates feeds
//	Repository (data)  → reads/writes SQLite
//
// Services take interfaces (repository.PostRepository, RedditAPI, ...) so
// tests can swap in fakes, and they return apperror values that handlers
// translate into HTTP responses. They never see an *http.Request; the
// current user arrives as a plain *model.User parameter.
package service
