// Package auth handles account passwords and the bearer tokens that guard the
// project API.
//
// Passwords are stored as bcrypt hashes. Tokens are HS256-signed JWTs whose
// subject is the username; Middleware verifies them and places the username in
// the request context, where Username retrieves it.
package auth
