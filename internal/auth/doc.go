// Package auth issues and verifies the session tokens that gate the dashboard
// and its API, hashes passwords with bcrypt, and keeps the set of users
// allowed to sign in.
//
// Tokens are HS256 JWTs carrying the numeric user id and the username. The
// HTTP layer stores them in an HttpOnly cookie and also accepts them as a
// Bearer header for scripted clients.
package auth
