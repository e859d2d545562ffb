// Package auth protects the pipeline trigger endpoint.
//
// The trigger is open unless TRIGGER_TOKEN_HASH is set. When it is, callers
// must present the plaintext token as a bearer token:
//
//	curl -X POST -H "Authorization: Bearer $TOKEN" http://host:8080/run
//
// Generate a token and its hash with the CLI:
//
//	airspace hash-token
//
// Only the bcrypt hash is stored in the environment.
package auth
